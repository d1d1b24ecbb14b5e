package main

import (
	"os"

	"horse.fit/mts/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
