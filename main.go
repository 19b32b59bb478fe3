package main

import "github.com/dropwatch/dropwatch/cmd"

func main() {
	cmd.Execute()
}
