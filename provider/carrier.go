package provider

import "context"

// Carrier is the boundary between services and the transport
type Carrier interface {
	Post(ctx context.Context, path string, body, out any, opts ...CallOption) error
	PostText(ctx context.Context, path string, body any, opts ...CallOption) (string, error)
}

// RestCarrier sends service calls through an HTTPClient
type RestCarrier struct {
	http *HTTPClient
}

// NewRestCarrier creates a carrier over the given client
func NewRestCarrier(http *HTTPClient) *RestCarrier {
	return &RestCarrier{http: http}
}

func (c *RestCarrier) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.http.Post(ctx, path, body, out, opts...)
}

func (c *RestCarrier) PostText(ctx context.Context, path string, body any, opts ...CallOption) (string, error) {
	return c.http.PostText(ctx, path, body, opts...)
}
