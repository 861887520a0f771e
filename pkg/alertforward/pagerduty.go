package alertforward

import (
	"context"
	"fmt"

	"github.com/function61/gokit/ezhttp"
	"github.com/function61/gokit/stringutils"
)

const (
	pagerDutyEventsApiV2 = "https://events.pagerduty.com/v2/enqueue"
)

// https://developer.pagerduty.com/docs/events-api-v2/trigger-events/
type pagerDutyEvent struct {
	Payload     pagerDutyEventPayload `json:"payload"`
	RoutingKey  string                `json:"routing_key"`
	EventAction string                `json:"event_action"`
}

type pagerDutyEventPayload struct {
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Severity string `json:"severity"`
}

type pagerDuty struct {
	secrets    SecretStore
	secretName string // secret holds the integration's routing key
	endpoint   string
}

func NewPagerDuty(secrets SecretStore, secretName string) Forwarder {
	return &pagerDuty{
		secrets:    secrets,
		secretName: secretName,
		endpoint:   pagerDutyEventsApiV2,
	}
}

func (p *pagerDuty) Name() string {
	return "PagerDuty"
}

func (p *pagerDuty) Forward(ctx context.Context, message string) error {
	routingKey, err := p.secrets.GetSecretString(ctx, p.secretName)
	if err != nil {
		return err
	}

	event := pagerDutyEvent{
		Payload: pagerDutyEventPayload{
			Summary:  stringutils.Truncate(message, 1000), // API max is 1024
			Source:   "AWS Lambda",
			Severity: "critical",
		},
		RoutingKey:  routingKey,
		EventAction: "trigger",
	}

	// Events API responds 202 Accepted
	res, err := ezhttp.Post(ctx, p.endpoint, ezhttp.SendJson(&event))
	if err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}

	return res.Body.Close()
}
