package cmd

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/ielts-trainer/internal/config"
	"github.com/SAP-F-2025/ielts-trainer/internal/events"
	"github.com/SAP-F-2025/ielts-trainer/internal/utils"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Practice event tools",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print practice events from Kafka as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := utils.ToSlogLogger(utils.NewLoggerForEnvironment(cfg.Environment))

		subscriber, err := events.NewKafkaSubscriber(events.SubscriberConfig{
			KafkaBrokers:  cfg.Events.GetKafkaBrokers(),
			ConsumerGroup: group,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		defer subscriber.Close()

		out := cmd.OutOrStdout()
		return events.ConsumePracticeEvents(cmd.Context(), subscriber, cfg.Events.PracticeTopic, logger,
			func(ctx context.Context, event *events.PracticeEvent) error {
				_, err := fmt.Fprintf(out, "%s %s user=%s data=%v\n",
					event.Timestamp.Format("2006-01-02T15:04:05Z07:00"), event.Type, event.UserID, event.Data)
				return err
			})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)

	eventsTailCmd.Flags().String("group", "", "Kafka consumer group (empty reads without committing offsets)")
}
