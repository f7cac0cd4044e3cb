package main

import (
	"fmt"
	"os"

	"sms-ledger/cmd/categories"
	"sms-ledger/cmd/categorize"
	"sms-ledger/cmd/commit"
	"sms-ledger/cmd/importer"
	"sms-ledger/cmd/mappings"
	"sms-ledger/cmd/migrate"
	"sms-ledger/cmd/patterns"
	"sms-ledger/cmd/root"
	"sms-ledger/cmd/serve"
	"sms-ledger/cmd/sources"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	root.Init()

	root.Cmd.AddCommand(importer.Cmd)
	root.Cmd.AddCommand(commit.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(mappings.Cmd)
	root.Cmd.AddCommand(sources.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(patterns.Cmd)
	root.Cmd.AddCommand(migrate.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
