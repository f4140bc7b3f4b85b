package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-synthesis-be/internal/config"
	"ai-synthesis-be/pkg/events"
	pktNats "ai-synthesis-be/pkg/nats"

	"github.com/fatih/color"
)

// Tails SYNTHESIS_COMPLETED events from JetStream.
func main() {
	cfg := config.Load()

	natsURL := flag.String("nats", cfg.App.NatsURL, "NATS server URL")
	durable := flag.String("durable", "", "durable consumer name; empty follows new events only")
	flag.Parse()

	sub, err := pktNats.NewSubscriber(*natsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	subject := "events." + events.TypeSynthesisCompleted
	if err := sub.Subscribe(ctx, subject, *durable, printEvent); err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	color.Cyan("Listening on %s, Ctrl+C to stop", subject)
	<-ctx.Done()
}

func printEvent(ctx context.Context, event events.Event) error {
	p := event.Payload()
	ts := event.Timestamp().Format("15:04:05")

	if fallback, _ := p["is_fallback"].(bool); fallback {
		color.Red("%s %v %v FALLBACK failed=%v", ts, p["synthesis_id"], p["category"], p["failed_channels"])
		return nil
	}

	color.Green("%s %v %v channels=%v quality=%v coherence=%v harmony=%v elapsed=%vms",
		ts,
		p["synthesis_id"],
		p["category"],
		p["contributing_channels"],
		p["synthesis_quality"],
		p["coherence"],
		p["harmony"],
		p["elapsed_ms"],
	)
	return nil
}
