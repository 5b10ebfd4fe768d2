package main

import (
	"github.com/AzielCF/az-vkmacro/cmd"
)

func main() {
	cmd.Execute()
}
