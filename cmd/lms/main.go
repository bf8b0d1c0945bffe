package main

import (
	"log"

	"github.com/jrsteele09/go-lms-client/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}
