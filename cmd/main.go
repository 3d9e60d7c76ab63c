package main

import (
	"os"

	"github.com/Anshuman123-dev/Varuna-task/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
