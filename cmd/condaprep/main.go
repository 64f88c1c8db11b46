package main

import (
	"git.home.luguber.info/inful/condaprep/cmd/condaprep/commands"
)

func main() {
	commands.Execute()
}
