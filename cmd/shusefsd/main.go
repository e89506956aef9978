package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"github.com/shusefs/shusefs/internal/cronjob"
	"github.com/shusefs/shusefs/internal/fsnode"
	"github.com/shusefs/shusefs/internal/logging"
	"github.com/shusefs/shusefs/internal/netloop"
	"github.com/shusefs/shusefs/internal/pending"
	"github.com/shusefs/shusefs/internal/session"
	"github.com/shusefs/shusefs/internal/state"
)

// StartUpOptions defines arguments allowed by the daemon.
type StartUpOptions struct {
	DeviceURL  string `short:"d" long:"device" description:"Device WebSocket URL, e.g. ws://192.168.1.20/rpc" required:"true"`
	Mountpoint string `short:"m" long:"mount" description:"Filesystem mountpoint."`
}

func main() {
	options := &StartUpOptions{}
	if _, err := flags.Parse(options); err != nil {
		os.Exit(1)
	}

	log := logging.NewConsole()
	log.Info("starting shusefsd", logging.FieldMethod, options.DeviceURL)

	cache := state.New()
	table := pending.New()
	sess := session.New(table, cache, log)
	cron := cronjob.New()
	loop := netloop.New(options.DeviceURL, sess, log, cron)

	root := fsnode.BuildRoot(sess)
	_ = root // not mounted: no kernel-facing binding layer is wired (see DESIGN.md)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received shutdown signal")
		cancel()
	}()

	if err := loop.Run(ctx); err != nil {
		log.Fatal("network loop failed", err)
	}

	log.Flush()
}
