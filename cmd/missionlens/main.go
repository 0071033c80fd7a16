package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/autopeer-io/missionlens/cmd/missionlens/app"
)

func main() {
	app.NewApp().Run()
}
