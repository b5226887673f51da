package main

import "bootsmith/internal/cli"

func main() {
	cli.Execute()
}
