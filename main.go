package main

import (
	"fmt"
	"os"

	cli "github.com/harborlabs/boost/cmd/boost"
	"github.com/harborlabs/boost/internal/config"
)

func main() {
	cfg := config.Load()

	if err := cli.SetupRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
