package main

import "github.com/fourlens/fourlens/cmd"

func main() {
	cmd.Execute()
}
