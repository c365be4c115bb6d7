package main

import "line-splicer/cmd/linesplice/cmd"

func main() {
	cmd.Execute()
}
