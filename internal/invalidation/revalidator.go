package invalidation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kyomu-reader/kyomu/internal/config"
)

// OriginRevalidator asks the front-end origin to re-render a set of paths.
type OriginRevalidator interface {
	Revalidate(ctx context.Context, paths []string) error
}

// Revalidator calls the origin's on-demand revalidation endpoint with a
// bearer credential. The request is bounded by a timeout so an
// unresponsive origin cannot stall the worker.
type Revalidator struct {
	client *resty.Client
	url    string
	secret string
}

// NewRevalidator builds a revalidator from configuration. baseURL is the
// origin root; the endpoint lives at /api/revalidate.
func NewRevalidator(cfg *config.Config) *Revalidator {
	timeout := time.Duration(cfg.Revalidate.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().SetTimeout(timeout)
	return &Revalidator{
		client: client,
		url:    strings.TrimSuffix(cfg.Revalidate.URL, "/") + "/api/revalidate",
		secret: cfg.Revalidate.Secret,
	}
}

// Revalidate POSTs the path list to the origin. A non-2xx status is an
// error; the response body is logged for diagnosis either way.
func (r *Revalidator) Revalidate(ctx context.Context, paths []string) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+r.secret).
		SetBody(map[string][]string{"paths": paths}).
		Post(r.url)
	if err != nil {
		return fmt.Errorf("origin revalidation request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("origin revalidation returned %s: %s", resp.Status(), resp.String())
	}
	log.Printf("Origin revalidation response: %s", resp.String())
	return nil
}
