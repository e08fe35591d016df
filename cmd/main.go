package main

import (
	"os"

	"github.com/quizwhiz/quizwhiz-backend/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
