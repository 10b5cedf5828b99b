package main

import (
	"github.com/teamdraw/teamdraw-go/internal/cli"
)

func main() {
	cli.Execute()
}
