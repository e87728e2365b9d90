package main

import "github.com/vladislavdragonenkov/hotelres/cmd/hotelctl/commands"

func main() {
	commands.Execute()
}
