package main

import "github.com/mcoot/spectrumgame-go/internal/cli"

func main() {
	cli.Execute()
}
