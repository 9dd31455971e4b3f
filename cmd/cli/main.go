package main

import (
	"context"
	"os"
	"os/signal"

	"elibrary/cmd/cli/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command.Execute(ctx)
}
