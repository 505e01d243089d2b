package main

import "github.com/user/skim/cmd"

func main() {
	cmd.Execute()
}
