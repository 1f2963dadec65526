// Package main is the kin command itself.
package main

import (
	"log"
	"os"

	kincli "go.viam.com/kinematics/cli"
)

func main() {
	app := kincli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
