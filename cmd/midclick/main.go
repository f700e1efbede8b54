// MidClick turns a global keyboard shortcut into a middle mouse click at the
// current pointer position.
//
// Runs as a menu bar item and listens for Cmd+Shift+M by default.
package main

import (
	"log"
	"os"
	"runtime"

	"midclick/internal/app"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func init() {
	// The menu bar item must run on the main thread
	runtime.LockOSThread()
}

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Printf("MidClick %s starting...", Version)

	application, err := app.New()
	if err != nil {
		log.Printf("Initialization failed: %v", err)
		os.Exit(1)
	}
	defer application.Close()

	application.Run()
}
