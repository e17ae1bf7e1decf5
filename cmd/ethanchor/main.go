package main

import "eth-anchor/internal/cli"

func main() {
	cli.Execute()
}
