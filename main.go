package main

import (
	"log"

	"github.com/empmatch/empmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
