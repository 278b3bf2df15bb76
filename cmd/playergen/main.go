package main

import (
	"os"

	"github.com/kapu/player-generator-go/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
