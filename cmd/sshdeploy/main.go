package main

import (
	"os"

	"github.com/yoanbernabeu/sshdeploy/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
