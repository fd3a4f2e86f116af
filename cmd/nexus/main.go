package main

import "github.com/vietddude/nexus/internal/cli"

func main() {
	cli.Execute()
}
