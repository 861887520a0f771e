package lambdautils

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/apex/gateway"
	"github.com/aws/aws-lambda-go/events"
)

// github.com/akrylysov/algnhsa has similar implementation than apex/gateway, but had the
// useful bits non-exported and it used httptest for production code
func ServeApiGatewayProxyRequestUsingHttpHandler(
	ctx context.Context,
	proxyRequest *events.APIGatewayProxyRequest,
	httpHandler http.Handler,
) ([]byte, error) {
	proxyResponse, err := ApiGatewayProxyRequestToHttpHandler(ctx, proxyRequest, httpHandler)
	if err != nil {
		return nil, err
	}

	return json.Marshal(proxyResponse)
}

// the request context (incl. identity.sourceIp) is reachable from the handler via
// gateway.RequestContext(r.Context())
func ApiGatewayProxyRequestToHttpHandler(
	ctx context.Context,
	proxyRequest *events.APIGatewayProxyRequest,
	httpHandler http.Handler,
) (*events.APIGatewayProxyResponse, error) {
	request, err := gateway.NewRequest(ctx, *proxyRequest)
	if err != nil {
		return nil, err
	}

	response := gateway.NewResponse()

	httpHandler.ServeHTTP(response, request)

	proxyResponse := response.End()

	return &proxyResponse, nil
}
