package main

import "github.com/crowdlane/offeringd/internal/cli"

func main() {
	cli.Execute()
}
