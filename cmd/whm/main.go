package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/balkashynov/whm/internal/commands"
	"github.com/balkashynov/whm/internal/db"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	commands.SetVersion(version, commit, date)
	if err := commands.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, db.ErrStorageUnavailable) {
			fmt.Fprintln(os.Stderr, "Check database.path in your config or WHM_DATABASE_PATH, then run 'whm init confirm'.")
		}
		stop()
		os.Exit(1)
	}
}
