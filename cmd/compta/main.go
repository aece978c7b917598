package main

import (
	"context"
	"os"

	"github.com/cleared-dev/compta/internal/commands"
)

func main() {
	if err := commands.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
