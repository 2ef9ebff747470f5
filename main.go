package main

import "github.com/kamusis/skillcat/cmd"

func main() {
	cmd.Execute()
}
