package main

import "github.com/pfrederiksen/lolopal/internal/cli"

func main() {
	cli.Execute()
}
