package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/keshon/server-banker/internal/command"
	"github.com/keshon/server-banker/internal/config"
	"github.com/keshon/server-banker/internal/discord"
	"github.com/keshon/server-banker/internal/dispatch"
	"github.com/keshon/server-banker/internal/httpapi"
	"github.com/keshon/server-banker/internal/ledger"
	"github.com/keshon/server-banker/internal/mcpserver"
	"github.com/keshon/server-banker/internal/store"
)

func main() {
	log.Println("[INFO] Starting server-banker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal("[ERR] ", err)
	}
	secrets, err := cfg.LoadSecrets()
	if err != nil {
		log.Fatal("[ERR] ", err)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("[ERR] ", err)
	}
	defer st.Close()

	led := ledger.New(st)

	registry := command.NewRegistry()
	if err := command.RegisterDefaults(registry); err != nil {
		log.Fatal("[ERR] ", err)
	}
	registry.Freeze()

	dispatcher := dispatch.New(registry, led,
		dispatch.WithTimeout(cfg.DispatchTimeout),
		dispatch.WithMaxConcurrent(cfg.MaxConcurrent),
	)

	tools := mcpserver.New(dispatcher, led, cfg.HTTPServerID)
	api := httpapi.New(dispatcher, led, registry, cfg.HTTPServerID, tools.HTTPHandler(), cfg.Debug())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return api.Run(gctx, cfg.Port)
	})

	if secrets.DiscordToken != "" {
		bot := discord.NewBot(dispatcher, cfg.CommandPrefix)
		g.Go(func() error {
			return bot.Run(gctx, secrets.DiscordToken)
		})
	} else {
		log.Println("[WARN] No Discord token configured, gateway transport disabled")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	g.Go(func() error {
		select {
		case s := <-sig:
			log.Printf("[INFO] Received signal %s, shutting down...", s)
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Println("[ERR] ", err)
	}
	log.Println("[INFO] server-banker exited cleanly")
}
