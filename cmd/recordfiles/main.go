package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/recordfiles/internal/cli"
	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(ctx, config.PositionalArgs(os.Args[1:]))
	switch {
	case err == nil:
	case errors.Is(err, common.ErrInvalidUsage):
		fmt.Fprintln(os.Stderr, err)
		cli.Usage(os.Stderr)
		stop()
		os.Exit(2)
	default:
		stop()
		log.Fatalf("%v", err)
	}
}
