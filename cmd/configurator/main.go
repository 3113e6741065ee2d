package main

import (
	"os"

	"github.com/mobilyasoft/configurator/cmd/configurator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
