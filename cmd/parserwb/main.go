// Package main is the entry point for parserwb.
package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/Nikitosik2311/parserwb/cmd/parserwb/cmd"
)

func main() {
	cmd.Execute()
}
