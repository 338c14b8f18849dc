package main

import "LeagueSync/internal/cli"

func main() {
	cli.Execute()
}
