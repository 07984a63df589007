package main

import "github.com/mcoot/spyword/internal/cli"

func main() {
	cli.Execute()
}
