package main

import "github.com/dmitrijs2005/zkpauth/internal/client/cmd"

func main() {
	cmd.Execute()
}
