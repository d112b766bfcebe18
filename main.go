package main

import (
	"os"

	"github.com/Luizsilva-repros/intranet/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
