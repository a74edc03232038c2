package main

import "github.com/anoixa/taskboard/cmd"

func main() {
	cmd.Execute()
}
