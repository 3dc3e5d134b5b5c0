package main

import "github.com/nettd/lobby-server/internal/cli"

func main() {
	cli.Execute()
}
