package main

import (
	"log"
	"os"
)

func main() {
	// MCP clients speak JSON-RPC on stdout; keep logs off it.
	log.SetOutput(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
