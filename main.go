package main

import "github.com/khanhnv2901/domainscan/cmd"

func main() {
	cmd.Execute()
}
