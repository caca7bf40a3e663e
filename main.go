package main

import "krosmoz-scrapper/cmd"

func main() {
	cmd.Execute()
}
