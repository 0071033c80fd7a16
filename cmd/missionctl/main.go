package main

import (
	"os"

	"github.com/autopeer-io/missionlens/cmd/missionctl/app"
)

func main() {
	if err := app.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
