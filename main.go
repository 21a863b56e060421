package main

import (
	"github.com/ColonelBlimp/sndgrep/cmd"
	"github.com/ColonelBlimp/sndgrep/internal/recovery"
)

func main() {
	defer recovery.HandlePanic()
	cmd.Execute()
}
