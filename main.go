package main

import "github.com/heliolang/heliobind/cmd"

var version = "v0.3.0"

func main() {
	cmd.Execute(version)
}
