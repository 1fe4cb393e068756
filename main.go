package main

import "github.com/jmehdipour/wa-assistant/cmd"

func main() {
	cmd.Execute()
}
