package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/budgetops/budget-sheets/commands"
	"github.com/budgetops/budget-sheets/internal/logger"
)

var options = commands.Options{
	Debug: false,
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := commands.NewRoot(&options, commands.All()...)

	if err := root.ExecuteContext(ctx); err != nil {
		log := logger.New(options.Debug)
		if options.Log != nil {
			log = *options.Log
		}

		log.Error().Err(err).Msg(commands.APP)
		cancel()
		os.Exit(1)
	}
}
