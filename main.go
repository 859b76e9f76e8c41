package main

import (
	"github.com/liftedinit/roadchain/cmd/roadchain"
)

func main() {
	roadchain.Execute()
}
