package main

import "github.com/CraigKelly/tsample/cmd"

func main() {
	cmd.Execute()
}
