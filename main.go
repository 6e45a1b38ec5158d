package main

import (
	"os"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
