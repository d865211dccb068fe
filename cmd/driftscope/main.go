package main

import (
	"github.com/driftscope/driftscope/cmd/driftscope/commands"
)

func main() {
	commands.Execute()
}
