package main

import (
	"os"

	"github.com/xiaoyuanzhu-com/claude-exec/cli"
)

func main() {
	os.Exit(cli.Execute())
}
