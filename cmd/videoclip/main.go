package main

import "github.com/Sha22Maithani/Videoclip/internal/cli"

func main() {
	cli.Main()
}
