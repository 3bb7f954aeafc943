package main

import "github.com/pickuppal/pickuppal/internal/cli"

func main() {
	cli.Execute()
}
