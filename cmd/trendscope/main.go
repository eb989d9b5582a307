package main

import (
	"os"

	"TrendScope/cmd/trendscope/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
