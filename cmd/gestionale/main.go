package main

import "github.com/vsinha/gestionale/pkg/interfaces/cli/commands"

func main() {
	commands.Execute()
}
