package main

import (
	"alcyxob/fitlog-bot/internal/cli"
	"fmt"
	"os"
)

// @title fitlog-bot admin API
// @version 1.0
// @description Read-only statistics and CSV exports of bot users.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fitlog-bot:", err)
		os.Exit(1)
	}
}
