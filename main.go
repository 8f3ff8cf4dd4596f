package main

import "github.com/gaurav-prasanna/reportgate/cmd"

func main() {
	cmd.Execute()
}
