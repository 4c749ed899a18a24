// Command rds-pricing builds the RDS pricing catalog from the public
// pricing feeds.
//
// Usage:
//
//	rds-pricing urls [--shape on_demand|reserved_legacy|reserved_term]
//	rds-pricing ingest [--output catalog.json] [--report report.json]
//	rds-pricing price <region> <instance-type> [--key engine/reservation/term/topology/license]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Setup context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
