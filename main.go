package main

import "github.com/naka-gawa/github-social-card/cmd"

func main() {
	cmd.Execute()
}
