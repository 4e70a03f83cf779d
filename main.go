package main

import "github.com/km-arc/go-restdocs/cmd"

func main() {
	cmd.Execute()
}
