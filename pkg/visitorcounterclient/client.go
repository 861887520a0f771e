package visitorcounterclient

import (
	"context"

	"github.com/function61/gokit/ezhttp"
	"github.com/function61/gokit/jsonfile"
	"github.com/function61/lambda-visitorcounter/pkg/visitorcountertypes"
)

type Client struct {
	endpoint string
}

func New(endpoint string) *Client {
	return &Client{endpoint}
}

type VisitResponse struct {
	Count       int64
	AllowOrigin string // the CORS header browsers would see
}

// counts as a visit (if we're outside of the cooldown window) just like a browser would
func (c *Client) Visit(ctx context.Context) (*VisitResponse, error) {
	res, err := ezhttp.Get(ctx, c.endpoint)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	count := visitorcountertypes.CountResponse{}
	if err := jsonfile.Unmarshal(res.Body, &count, false); err != nil {
		return nil, err
	}

	return &VisitResponse{
		Count:       count.Count,
		AllowOrigin: res.Header.Get("Access-Control-Allow-Origin"),
	}, nil
}
