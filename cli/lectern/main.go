package main

import (
	"os"

	"github.com/joho/godotenv"

	lecterncmder "github.com/lecternhq/lectern/cmd/lectern"
)

func main() {
	// Best-effort: a missing .env is not an error.
	_ = godotenv.Load()

	cmd := lecterncmder.NewLecternCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
