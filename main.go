package main

import (
	"fmt"
	"os"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/cli"
)

var version = "dev"

// @title Taskboard API
// @version 1.0
// @description Accounts, sessions, password resets and tasks.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
