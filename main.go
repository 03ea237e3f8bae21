package main

import (
	"github.com/dszqbsm/sakura/cmd"
)

func main() {
	cmd.Execute()
}
