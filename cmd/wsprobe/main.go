package main

import "wsprobe/cmd"

func main() {
	cmd.Execute()
}
