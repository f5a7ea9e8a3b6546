package main

import "github.com/hireiq/hireiq/cmd"

func main() {
	cmd.Execute()
}
