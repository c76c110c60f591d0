package anthropic

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// rateLimitedClient wraps a Client with a client-side request rate limiter
// so parallel phase-retrieval workers cannot burst past the API's limits.
type rateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// WithRateLimit wraps client with a limiter allowing rps requests per second
// (burst of rps). Non-positive rps returns the client unchanged.
func WithRateLimit(client Client, rps float64) Client {
	if rps <= 0 {
		return client
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedClient{
		inner:   client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *rateLimitedClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "anthropic: rate limiter")
	}
	return c.inner.CreateMessage(ctx, req)
}
