package main

import (
	"os"

	"wscheck/internal/check"
	"wscheck/internal/cli"
)

const version = "0.1.0"

func main() {
	checker := check.New(os.Stdout)
	app := cli.New("wscheck", version, checker.Run)
	os.Exit(app.Execute(os.Args, os.Stdout, os.Stderr))
}
