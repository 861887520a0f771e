package alertforward

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/function61/gokit/ezhttp"
	"github.com/function61/gokit/jsonfile"
	"github.com/function61/gokit/stringutils"
)

type slackSecret struct {
	WebhookUrl string `json:"slack_webhook_url"`
}

type slackMessage struct {
	Text string `json:"text"`
}

type slack struct {
	secrets    SecretStore
	secretName string
}

func NewSlack(secrets SecretStore, secretName string) Forwarder {
	return &slack{
		secrets:    secrets,
		secretName: secretName,
	}
}

func (s *slack) Name() string {
	return "Slack"
}

func (s *slack) Forward(ctx context.Context, message string) error {
	webhookUrl, err := s.webhookUrl(ctx)
	if err != nil {
		return err
	}

	res, err := ezhttp.Post(ctx, webhookUrl, ezhttp.SendJson(&slackMessage{
		Text: stringutils.Truncate("AWS Alert: "+message, 3000),
	}))
	if err != nil {
		// don't leak the webhook URL (it is a credential) into the logs
		return errors.New("webhook: " + strings.ReplaceAll(err.Error(), webhookUrl, "<webhook>"))
	}

	return res.Body.Close()
}

func (s *slack) webhookUrl(ctx context.Context) (string, error) {
	secretJson, err := s.secrets.GetSecretString(ctx, s.secretName)
	if err != nil {
		return "", err
	}

	secret := slackSecret{}
	if err := jsonfile.Unmarshal(strings.NewReader(secretJson), &secret, false); err != nil {
		return "", fmt.Errorf("secret %s: %w", s.secretName, err)
	}

	if secret.WebhookUrl == "" {
		return "", fmt.Errorf("secret %s: slack_webhook_url missing", s.secretName)
	}

	return secret.WebhookUrl, nil
}
