package main

import "github.com/konst007/chgk/cmd"

func main() {
	cmd.Execute()
}
