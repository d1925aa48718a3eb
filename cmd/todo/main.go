package main

import (
	"os"

	"github.com/amirbrooks/todolist/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
