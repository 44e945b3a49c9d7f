package main

import "github.com/tessro/speck/internal/cli"

func main() {
	cli.Execute()
}
