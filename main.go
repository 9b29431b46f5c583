package main

import "github.com/KaramelBytes/sommelier-cli/cmd"

func main() {
	cmd.Execute()
}
