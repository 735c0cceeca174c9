package main

import "photomigrate/cmd"

func main() {
	cmd.Execute()
}
