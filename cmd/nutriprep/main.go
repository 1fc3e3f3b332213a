package main

import "nutriprep/internal/cli"

func main() {
	cli.Execute()
}
