package main

import (
	"os"

	"virt-otg/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
