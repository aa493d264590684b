// Command vocabctl administers a VocabFlow database: it applies migrations,
// imports word lists from spreadsheets, previews a learner's review plan
// and issues development tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/vocabflow/internal/redact"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", redact.Error(err))
		os.Exit(1)
	}
}
