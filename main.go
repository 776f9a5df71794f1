package main

import "github.com/alec-rabold/zipview/cmd"

// version is set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cmd.Execute(version)
}
