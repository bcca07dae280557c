// Command alertctl reports and manages weather alerts from the command line.
// It keeps the same device identity and recent-alert preview as the app.
package main

import (
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
