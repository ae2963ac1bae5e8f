package main

import (
	"rtsched/internal/cli"
	"rtsched/pkg/env"
	"rtsched/pkg/log"
)

func main() {
	if err := env.Process(); err != nil {
		log.Fatal("environment failure", "error", err)
	}

	if err := cli.Execute(); err != nil {
		log.Fatal("rtsched failure", "error", err)
	}
	log.Sync()
}
