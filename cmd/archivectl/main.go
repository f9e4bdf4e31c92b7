package main

import (
	"os"

	"github.com/joho/godotenv"

	"codearchive/internal/cli"
)

func main() {
	// Same .env as the server, if present
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
