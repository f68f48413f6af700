package main

import (
	"github.com/wesleyorama2/fetchpool/internal/cli"
)

func main() {
	cli.Execute()
}
