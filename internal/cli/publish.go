package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Fetch the feed once and publish every earthquake to Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPublish(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// runPublish publishes directly rather than through the loader so that a
// broker failure becomes the command's exit status.
func (a *app) runPublish(ctx context.Context, out io.Writer) error {
	a.cfg.KafkaEnabled = true
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	metrics := a.newMetrics()
	result, err := a.newLoader(metrics, nil).Load(ctx)
	if err != nil {
		return err
	}
	if result.Empty() {
		printEmptyState(out, result.EmptyState())
		if result.Err != nil {
			return fmt.Errorf("nothing published: %w", result.Err)
		}
		return nil
	}

	writer := a.newPublisher(a.cfg, metrics, a.logger)
	pubErr := writer.Publish(ctx, result)
	if err := writer.Close(); err != nil {
		a.logger.Error("kafka writer close error", "error", err)
	}
	if pubErr != nil {
		return fmt.Errorf("publish earthquakes: %w", pubErr)
	}

	printSuccess(out, "published %d earthquakes to %s", len(result.Earthquakes), a.cfg.KafkaTopic)
	return nil
}
