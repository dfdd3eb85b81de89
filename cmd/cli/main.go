package main

import (
	"github.com/scorecraft/sctl/pkg/cli"
)

func main() {
	cli.Execute()
}
