package main

import "github.com/anortham/codesearch-mcp/cmd"

func main() {
	cmd.Execute()
}
