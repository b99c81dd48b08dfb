package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gnomegl/labslurp/internal/cli"
)

func main() {
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewApp().RunContext(ctx, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}
