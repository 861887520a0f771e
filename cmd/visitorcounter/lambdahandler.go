package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/function61/gokit/logex"
	"github.com/function61/lambda-visitorcounter/pkg/alertforward"
	"github.com/function61/lambda-visitorcounter/pkg/lambdautils"
)

// same binary serves both functions: visitor counter (API Gateway) and alert forwarding (SNS).
// each function is only configured for its own trigger.
func lambdaHandler() {
	logger := logex.StandardLogger()

	awsSession, err := session.NewSession()
	exitIfError(err)

	lambda.StartHandler(lambdautils.NewMultiEventTypeHandler(newLambdaHandler(
		newRestApi(awsSession, logger),
		newAlertDispatcher(awsSession, logger))))
}

func newLambdaHandler(
	restApi http.Handler,
	alertDispatcher *alertforward.Dispatcher,
) func(ctx context.Context, polymorphicEvent interface{}) ([]byte, error) {
	return func(ctx context.Context, polymorphicEvent interface{}) ([]byte, error) {
		switch event := polymorphicEvent.(type) {
		case *events.SNSEvent:
			return nil, handleSnsAlerts(ctx, *event, alertDispatcher)
		case *events.APIGatewayProxyRequest:
			return lambdautils.ServeApiGatewayProxyRequestUsingHttpHandler(
				ctx,
				event,
				restApi)
		default:
			return nil, errors.New("cannot identify type of request")
		}
	}
}
