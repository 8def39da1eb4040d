package main

import (
	"github.com/finsim/retirement-simulator/cmd"
)

func main() {
	cmd.Execute()
}
