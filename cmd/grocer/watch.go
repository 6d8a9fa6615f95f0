package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dukerupert/grocer/internal/grocery"
	"github.com/dukerupert/grocer/internal/middleware"
	"github.com/dukerupert/grocer/internal/notify"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var addr string
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the escalation sweep and serve live events until interrupted",
		Long: `watch sweeps the list once immediately and then every --interval, printing
each notification. Events are also streamed as JSON over a websocket at
ws://ADDR/feed. The list is held in memory while watch runs, so edits made
by other grocer processes in the meantime are overwritten by the next
sweep that changes something.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd); err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.ListenAddr
			}
			if !cmd.Flags().Changed("interval") {
				interval = a.cfg.SweepInterval
			}
			return a.watch(cmd.Context(), cmd.OutOrStdout(), addr, interval)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address for the event feed (empty string disables it)")
	cmd.Flags().DurationVar(&interval, "interval", grocery.DefaultSweepInterval, "Time between sweeps")
	return cmd
}

func (a *app) watch(ctx context.Context, out io.Writer, addr string, interval time.Duration) error {
	sub := a.hub.Subscribe(64)
	defer a.hub.Unsubscribe(sub)

	var srv *http.Server
	errc := make(chan error, 1)
	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /feed", notify.HandleFeed(a.hub, a.logger))
		srv = &http.Server{
			Addr:              addr,
			Handler:           middleware.RequestLogger(a.logger)(mux),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.logger.Info("event feed listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
	}

	sweeper := grocery.NewSweeper(a.list, interval, a.logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-errc:
			runErr = fmt.Errorf("event feed: %w", err)
			break loop
		case msg, ok := <-sub.C:
			if !ok {
				break loop
			}
			var e notify.Event
			if err := json.Unmarshal(msg, &e); err != nil {
				continue
			}
			printEvents(out, []notify.Event{e})
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("shutdown event feed", "error", err)
		}
	}
	return runErr
}
