package main

import "github.com/phantasma-io/go-phantasma/internal/cli"

func main() {
	cli.Execute()
}
