package main

import (
	"github.com/joho/godotenv"

	"docqa/internal/cli"
)

func main() {
	// Best effort: a .env may carry the embedding provider key. The
	// generation credential is never sourced here; it comes per call.
	_ = godotenv.Load()

	cli.Execute()
}
