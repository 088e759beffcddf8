package main

import "bexmcp/cmd"

func main() {
	cmd.Execute()
}
