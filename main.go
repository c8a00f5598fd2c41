package main

import "ward-manager/cmd"

func main() {
	cmd.Execute()
}
