// Package main is the CLI command itself.
package main

import (
	"log"
	"os"

	"github.com/pointfusion/detconfig/cli"
)

func main() {
	if err := cli.NewApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
