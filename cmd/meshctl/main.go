package main

import "meshwork/cmd/meshctl/cmd"

func main() {
	cmd.Execute()
}
