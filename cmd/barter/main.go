package main

import (
	"fmt"
	"os"

	"github.com/catalogfi/barter/cli"
)

// version is set through ldflags at release time.
var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
