package alertforward

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"github.com/function61/gokit/assert"
)

func TestPagerDuty(t *testing.T) {
	webhook := newTestWebhook(http.StatusAccepted)
	defer webhook.Close()

	secrets := testSecrets{
		"pagerduty_integration_url": "R0UT1NGK3Y",
	}

	pd := NewPagerDuty(secrets, "pagerduty_integration_url").(*pagerDuty)
	pd.endpoint = webhook.URL + "/v2/enqueue"

	assert.Ok(t, pd.Forward(context.Background(), "CPU utilization high"))

	assert.EqualString(t, webhook.path, "/v2/enqueue")
	assert.EqualJson(t, webhook.body, `{
  "event_action": "trigger",
  "payload": {
    "severity": "critical",
    "source": "AWS Lambda",
    "summary": "CPU utilization high"
  },
  "routing_key": "R0UT1NGK3Y"
}`)
}

func TestPagerDutyTruncatesSummary(t *testing.T) {
	webhook := newTestWebhook(http.StatusAccepted)
	defer webhook.Close()

	pd := NewPagerDuty(testSecrets{"pd": "key"}, "pd").(*pagerDuty)
	pd.endpoint = webhook.URL

	assert.Ok(t, pd.Forward(context.Background(), strings.Repeat("x", 5000)))

	summary := webhook.body["payload"].(map[string]interface{})["summary"].(string)
	assert.Assert(t, len([]rune(summary)) <= 1024)
}

func TestPagerDutyRejected(t *testing.T) {
	webhook := newTestWebhook(http.StatusBadRequest)
	defer webhook.Close()

	pd := NewPagerDuty(testSecrets{"pd": "key"}, "pd").(*pagerDuty)
	pd.endpoint = webhook.URL

	assert.Assert(t, pd.Forward(context.Background(), "disk full") != nil)
}

func TestSlack(t *testing.T) {
	webhook := newTestWebhook(http.StatusOK)
	defer webhook.Close()

	secrets := testSecrets{
		"slack": `{"slack_webhook_url": "` + webhook.URL + `/services/T000/B000/XXXX"}`,
	}

	assert.Ok(t, NewSlack(secrets, "slack").Forward(context.Background(), "disk full"))

	assert.EqualString(t, webhook.path, "/services/T000/B000/XXXX")
	assert.EqualJson(t, webhook.body, `{
  "text": "AWS Alert: disk full"
}`)
}

func TestSlackBadSecret(t *testing.T) {
	ctx := context.Background()

	assert.EqualString(
		t,
		NewSlack(testSecrets{"slack": `{"webhook": "https://example.com/"}`}, "slack").Forward(ctx, "x").Error(),
		"secret slack: slack_webhook_url missing")

	assert.EqualString(
		t,
		NewSlack(testSecrets{}, "slack").Forward(ctx, "x").Error(),
		"secret not found: slack")
}

func TestSlackErrorDoesNotLeakWebhookUrl(t *testing.T) {
	webhook := newTestWebhook(http.StatusForbidden)
	defer webhook.Close()

	secretUrl := webhook.URL + "/services/T000/B000/SECRET"

	err := NewSlack(testSecrets{"slack": `{"slack_webhook_url": "` + secretUrl + `"}`}, "slack").Forward(
		context.Background(),
		"disk full")
	assert.Assert(t, err != nil)
	assert.Assert(t, !strings.Contains(err.Error(), "SECRET"))
}

func TestDispatcher(t *testing.T) {
	ctx := context.Background()

	ok := &testForwarder{name: "ok"}
	broken := &testForwarder{name: "broken", err: errors.New("connection refused")}

	// one failing destination does not prevent others from getting the message
	assert.Ok(t, NewDispatcher([]Forwarder{broken, ok}, nil).Forward(ctx, "disk full"))
	assert.EqualString(t, strings.Join(ok.received, ","), "disk full")
	assert.EqualString(t, strings.Join(broken.received, ","), "disk full")

	assert.EqualString(
		t,
		NewDispatcher([]Forwarder{broken, broken}, nil).Forward(ctx, "disk full").Error(),
		"all 2 alert forwarder(s) failed")

	assert.EqualString(
		t,
		NewDispatcher(nil, nil).Forward(ctx, "disk full").Error(),
		"no alert forwarders configured")
}

func TestSecretsManagerStore(t *testing.T) {
	ctx := context.Background()

	store := NewSecretsManagerStore(&testSecretsManager{
		secrets: map[string]*secretsmanager.GetSecretValueOutput{
			"pagerduty_integration_url": {SecretString: aws.String("R0UT1NGK3Y")},
			"binary":                    {SecretBinary: []byte{0x01}},
		},
	})

	routingKey, err := store.GetSecretString(ctx, "pagerduty_integration_url")
	assert.Ok(t, err)
	assert.EqualString(t, routingKey, "R0UT1NGK3Y")

	_, err = store.GetSecretString(ctx, "binary")
	assert.EqualString(t, err.Error(), "secret binary is binary; expecting string")

	_, err = store.GetSecretString(ctx, "nonexistent")
	assert.EqualString(t, err.Error(), "GetSecretValue nonexistent: ResourceNotFoundException")
}

type testSecrets map[string]string

func (s testSecrets) GetSecretString(_ context.Context, name string) (string, error) {
	secret, found := s[name]
	if !found {
		return "", errors.New("secret not found: " + name)
	}

	return secret, nil
}

type testSecretsManager struct {
	secretsmanageriface.SecretsManagerAPI
	secrets map[string]*secretsmanager.GetSecretValueOutput
}

func (s *testSecretsManager) GetSecretValueWithContext(
	_ aws.Context,
	input *secretsmanager.GetSecretValueInput,
	_ ...request.Option,
) (*secretsmanager.GetSecretValueOutput, error) {
	secret, found := s.secrets[*input.SecretId]
	if !found {
		return nil, errors.New(secretsmanager.ErrCodeResourceNotFoundException)
	}

	return secret, nil
}

type testForwarder struct {
	name     string
	err      error
	received []string
}

func (f *testForwarder) Name() string {
	return f.name
}

func (f *testForwarder) Forward(_ context.Context, message string) error {
	f.received = append(f.received, message)
	return f.err
}

// captures the last JSON body posted to it
type testWebhook struct {
	*httptest.Server
	path string
	body map[string]interface{}
}

func newTestWebhook(statusCode int) *testWebhook {
	webhook := &testWebhook{}
	webhook.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		webhook.path = r.URL.Path

		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			panic(err)
		}

		webhook.body = map[string]interface{}{}
		if err := json.Unmarshal(body, &webhook.body); err != nil {
			panic(err)
		}

		w.WriteHeader(statusCode)
	}))

	return webhook
}
