package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/alfredjeanlab/quotewidget/internal/events"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream widget events from NATS",
	GroupID: "widgets",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats-url")
		if natsURL == "" {
			return fmt.Errorf("no NATS URL: pass --nats-url or set QW_NATS_URL")
		}
		topic, _ := cmd.Flags().GetString("topic")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return watchNATS(ctx, natsURL, topic)
	},
}

// watchNATS prints every event published on topic until ctx is done.
func watchNATS(ctx context.Context, natsURL, topic string) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(topic)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			fmt.Println(formatEvent(data))
		}
	}
}

// formatEvent renders one event payload. Render events are summarised;
// anything else is printed as compact JSON.
func formatEvent(data []byte) string {
	if jsonOutput {
		return string(data)
	}
	var evt events.WidgetRendered
	if err := json.Unmarshal(data, &evt); err == nil && evt.Params != nil {
		return fmt.Sprintf("widget %d rendered %s: %q %s",
			evt.WidgetID, evt.RenderID, truncate(evt.Params.QuoteText, 40), evt.Params.QuoteAuthor)
	}
	return string(data)
}

func init() {
	watchCmd.Flags().String("nats-url", os.Getenv("QW_NATS_URL"), "NATS server URL")
	watchCmd.Flags().String("topic", events.TopicAll, "subject to subscribe to")
}
