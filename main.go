package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"uhb/trade-ledger/cmd/backup"
	"uhb/trade-ledger/cmd/catalog"
	"uhb/trade-ledger/cmd/migrate"
	"uhb/trade-ledger/cmd/reminders"
	"uhb/trade-ledger/cmd/report"
	"uhb/trade-ledger/cmd/root"
	"uhb/trade-ledger/cmd/stock"
	"uhb/trade-ledger/cmd/trader"
	"uhb/trade-ledger/cmd/transaction"
	"uhb/trade-ledger/internal/config"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	config.LoadEnv()

	// 2. Configure the shared log level before any command logs
	root.Log.SetLevel(logLevelFromEnv())

	// 3. Initialize root command and add all subcommands
	root.Init()
	root.Cmd.AddCommand(transaction.Cmd)
	root.Cmd.AddCommand(trader.Cmd)
	root.Cmd.AddCommand(catalog.Cmd)
	root.Cmd.AddCommand(stock.Cmd)
	root.Cmd.AddCommand(report.Cmd)
	root.Cmd.AddCommand(backup.Cmd)
	root.Cmd.AddCommand(reminders.Cmd)
	root.Cmd.AddCommand(migrate.Cmd)
}

// logLevelFromEnv reads LOG_LEVEL, defaulting to info
func logLevelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(config.GetEnv("LOG_LEVEL", "info")))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
