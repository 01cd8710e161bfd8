package main

import (
	"github.com/c9s/ohlcv/pkg/cmd"
)

func main() {
	cmd.Execute()
}
