package main

import "macro-risk-alerts/internal/cli"

func main() {
	cli.Execute()
}
