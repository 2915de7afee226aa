package main

import "github.com/dayuer/virtualco/cmd"

func main() {
	cmd.Execute()
}
