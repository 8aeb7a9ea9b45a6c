package main

import "netgraphx/cmd"

func main() {
	cmd.Execute()
}
