//go:build ignore

// Generates the tray icons.
// Run: go run scripts/generate_icons.go
package main

import (
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
)

func main() {
	dir := "embedded"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Could not create directory %s: %v", dir, err)
	}

	icons := []struct {
		name  string
		color color.RGBA
	}{
		{"icon_trusted.png", color.RGBA{40, 40, 40, 255}},     // Dark
		{"icon_untrusted.png", color.RGBA{220, 50, 50, 255}},  // Red
		{"icon_disabled.png", color.RGBA{150, 150, 150, 255}}, // Gray
	}

	for _, icon := range icons {
		path := filepath.Join(dir, icon.name)
		if err := generateIcon(path, icon.color); err != nil {
			log.Fatalf("Failed to generate %s: %v", icon.name, err)
		}
		log.Printf("Created: %s", path)
	}
}

func generateIcon(path string, c color.RGBA) error {
	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	// Mouse body
	centerX, centerY := size/2, size/2
	rx, ry := 16.0, 24.0

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x-centerX) / rx
			dy := float64(y-centerY) / ry
			if dx*dx+dy*dy <= 1 {
				img.Set(x, y, c)
			}
		}
	}

	// Button seam and the middle button cut out of the body
	for x := centerX - 16; x <= centerX+16; x++ {
		for y := centerY - 5; y <= centerY-4; y++ {
			img.Set(x, y, color.RGBA{})
		}
	}
	for y := centerY - 16; y < centerY-5; y++ {
		for x := centerX - 2; x <= centerX+2; x++ {
			img.Set(x, y, color.RGBA{})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
