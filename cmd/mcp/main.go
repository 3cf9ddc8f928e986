package main

import (
	"fmt"
	"os"

	"github.com/kazuph/slack-bridge/internal/mcp"
)

func main() {
	serverURL := os.Getenv("BRIDGE_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:3847"
	}

	server := mcp.NewServer(serverURL)
	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %s\n", err)
		os.Exit(1)
	}
}
