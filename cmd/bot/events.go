package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quran-irc-bot/internal/config"
	"quran-irc-bot/pkg/events"
	pktNats "quran-irc-bot/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var eventType string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow activity events mirrored to NATS",
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().StringVarP(&eventType, "type", "t", "", "Only show this event type (e.g. USER_ACTIVITY)")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		return fmt.Errorf("NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	color.Cyan("Following %s (Ctrl+C to stop)", pktNats.Subject(orAll(eventType)))
	return sub.Tail(ctx, eventType, func(_ context.Context, e events.Event) error {
		data, err := json.Marshal(e.Payload())
		if err != nil {
			return err
		}
		fmt.Printf("%s %s %s\n",
			color.HiBlackString(e.Timestamp().Format("15:04:05")),
			color.YellowString(e.EventType()),
			string(data),
		)
		return nil
	})
}

func orAll(t string) string {
	if t == "" {
		return ">"
	}
	return t
}
