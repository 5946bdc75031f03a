package main

import "github.com/attrition-game/atk/cmd"

func main() {
	cmd.Execute()
}
