package main

import (
	"os"

	"go-worklog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
