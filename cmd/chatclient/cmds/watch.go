package cmds

import (
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/chatclient/pkg/notify"
)

func newWatchCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print failure notifications published by other clients over Redis Streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			t, err := buildTransport(r.settings)
			if err != nil {
				return err
			}
			defer func() { _ = t.Close() }()

			topic := r.settings.NotifyTopic
			if topic == "" {
				topic = notify.DefaultTopic
			}
			msgs, err := t.Subscriber.Subscribe(ctx, topic)
			if err != nil {
				return errors.Wrapf(err, "subscribe %s", topic)
			}

			printer := notify.NewTerminalNotifier(cmd.OutOrStdout())
			for msg := range msgs {
				n, err := notify.DecodeMessage(msg)
				if err != nil {
					log.Warn().Err(err).Str("message_id", msg.UUID).Msg("skipping undecodable notification")
					msg.Ack()
					continue
				}
				printer.Notify(ctx, n)
				msg.Ack()
			}
			return nil
		},
	}
}
