package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/pokrova/contentctl/internal/cli"
)

func main() {
	// Optional .env with CONTENTCTL_* overrides and GITHUB_TOKEN.
	godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
