package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/moviecollections/apiserver/internal/events"
	"github.com/moviecollections/apiserver/internal/logging"
	"github.com/moviecollections/apiserver/internal/mq"
	"github.com/moviecollections/apiserver/types"
	"github.com/spf13/cobra"
)

var tailChannel string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect user and collection events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print events from a channel until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tailChannel != types.ChannelUserEvents && tailChannel != types.ChannelCollectionEvents {
			return fmt.Errorf("unknown channel %q (want %s or %s)", tailChannel, types.ChannelUserEvents, types.ChannelCollectionEvents)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer broker.Close()

		out := cmd.OutOrStdout()
		publisher := events.NewPublisher(broker)
		err = publisher.Tail(ctx, tailChannel, func(event types.Event) error {
			_, err := fmt.Fprintf(out, "%s\t%s\tuser=%d\tcollection=%s\t%s\n",
				event.OccurredAt.Format(time.RFC3339), event.Type, event.UserID, event.CollectionUUID, event.ID)
			return err
		})
		if errors.Is(err, context.Canceled) {
			logging.Info().Str("channel", tailChannel).Msg("stopped tailing")
			return nil
		}
		return err
	},
}

func init() {
	eventsTailCmd.Flags().StringVar(&tailChannel, "channel", types.ChannelCollectionEvents, "channel to tail")
	eventsCmd.AddCommand(eventsTailCmd)
	rootCmd.AddCommand(eventsCmd)
}
