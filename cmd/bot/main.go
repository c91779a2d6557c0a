package main

import (
	"os"

	"github.com/cafetunes/publisher/internal/app"
)

func main() {
	os.Exit(app.Run("publisher-bot", run))
}
