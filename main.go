package main

import (
	"soundcrate/cmd"
)

func main() {
	cmd.Execute()
}
