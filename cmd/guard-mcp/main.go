package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	guardmcp "github.com/devricklin/privacy-guard/internal/mcp"
	"github.com/devricklin/privacy-guard/mcpserver"
)

var version = "dev"

// guard-mcp speaks MCP on stdio and relays tool calls to the guardd admin API.
// GUARD_API_URL overrides the default admin address.
func main() {
	// stdout carries the protocol
	log.SetOutput(os.Stderr)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := guardmcp.NewClient(os.Getenv("GUARD_API_URL"))
	server := mcpserver.NewServer(guardmcp.NewHandler(client), version)

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
