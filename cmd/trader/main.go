package main

import (
	"fmt"
	"log"
	"os"

	"TrendTrader/internal/cli"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
