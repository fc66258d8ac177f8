package main

import "github.com/tubetext/tubetext/internal/cli"

func main() {
	cli.Execute()
}
