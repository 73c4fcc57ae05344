package main

import "github.com/dszqbsm/scrapetree/cmd"

func main() {
	cmd.Execute()
}
