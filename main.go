package main

import "github.com/itish2003/studysense/cmd"

func main() {
	cmd.Execute()
}
