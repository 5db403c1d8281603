package main

import "github.com/jjenkins/billt/cmd"

func main() {
	cmd.Execute()
}
