package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/function61/lambda-visitorcounter/pkg/alertforward"
	"github.com/spf13/cobra"
)

func alertEntry() *cobra.Command {
	return &cobra.Command{
		Use:   "alert [message]",
		Short: "Forward an alert to configured destinations (PagerDuty, Slack)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			logger := logex.StandardLogger()

			awsSession, err := session.NewSession()
			exitIfError(err)

			exitIfError(newAlertDispatcher(awsSession, logger).Forward(
				ossignal.InterruptOrTerminateBackgroundCtx(logger),
				args[0]))
		},
	}
}

// invoked for alarm SNS topic (e.g. CloudWatch alarms)
func handleSnsAlerts(ctx context.Context, event events.SNSEvent, alertDispatcher *alertforward.Dispatcher) error {
	failed := 0

	for _, msg := range event.Records {
		if err := alertDispatcher.Forward(ctx, msg.SNS.Message); err != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d/%d alert(s) could not be forwarded anywhere", failed, len(event.Records))
	}

	return nil
}

func newAlertDispatcher(awsSession *session.Session, logger *log.Logger) *alertforward.Dispatcher {
	return alertforward.NewDispatcher(
		alertForwardersFromEnv(alertforward.NewSecretsManagerStore(secretsmanager.New(awsSession))),
		logex.Prefix("alertforward", logger))
}

// destinations whose secret name is not set are disabled
func alertForwardersFromEnv(secrets alertforward.SecretStore) []alertforward.Forwarder {
	forwarders := []alertforward.Forwarder{}

	if secretName := os.Getenv("PAGERDUTY_SECRET_NAME"); secretName != "" {
		forwarders = append(forwarders, alertforward.NewPagerDuty(secrets, secretName))
	}

	if secretName := os.Getenv("SLACK_WEBHOOK_SECRET_NAME"); secretName != "" {
		forwarders = append(forwarders, alertforward.NewSlack(secrets, secretName))
	}

	return forwarders
}
