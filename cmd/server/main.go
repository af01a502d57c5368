package main

import "lumigram/internal/cli"

func main() {
	cli.Execute()
}
