package main

import "github.com/notargets/meshmove/cmd"

func main() {
	cmd.Execute()
}
