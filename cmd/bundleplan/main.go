package main

import (
	"github.com/bundleplan/bundleplan/cmd/bundleplan/internal/command"
)

func main() {
	command.Execute()
}
