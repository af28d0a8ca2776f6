package main

import (
	"github.com/vesper-os/forge/cmd"
)

func main() {
	cmd.Execute()
}
