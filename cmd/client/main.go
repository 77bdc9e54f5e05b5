package main

import "hemapp/cmd/client/cmd"

func main() {
	cmd.Execute()
}
