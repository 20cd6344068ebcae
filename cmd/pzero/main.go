package main

import "github.com/WRMELO/PortfolioZero/cli"

func main() {
	cli.Execute()
}
