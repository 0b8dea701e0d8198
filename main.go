package main

import (
	"fmt"
	"os"

	"github.com/oktatools/oktaws/cmd/root"
)

func main() {
	if err := root.NewRootCmd().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
