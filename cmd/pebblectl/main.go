package main

import (
	"os"

	"github.com/joho/godotenv"

	"pebblely/internal/cli"
)

func main() {
	_ = godotenv.Load()
	if err := cli.Execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
