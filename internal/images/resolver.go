// Package images turns stored object keys into client-facing delivery
// URLs. Values that are already absolute URLs pass through untouched; only
// bare storage keys are rewritten. The rewrite strategy (CDN-domain URL or
// time-limited presigned URL) is chosen by configuration at startup.
package images

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kyomu-reader/kyomu/internal/config"
)

// Resolver computes the delivery URL for one storage key.
type Resolver interface {
	ResolveURL(key string) (string, error)
}

// IsAbsoluteURL reports whether the stored value is already a full URL.
func IsAbsoluteURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// NewResolver constructs the resolver selected by cfg.Images.Strategy.
func NewResolver(cfg *config.Config) (Resolver, error) {
	switch cfg.Images.Strategy {
	case "cdn":
		if cfg.Images.CDNDomain == "" {
			return nil, fmt.Errorf("images.cdn_domain must be set for the cdn strategy")
		}
		return &CDNResolver{Domain: cfg.Images.CDNDomain}, nil
	case "signed":
		if cfg.Images.Bucket == "" {
			return nil, fmt.Errorf("images.bucket must be set for the signed strategy")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		return &SignedResolver{
			Presigner: s3.NewPresignClient(s3.NewFromConfig(awsCfg)),
			Bucket:    cfg.Images.Bucket,
			TTL:       time.Duration(cfg.Images.URLTTLMins) * time.Minute,
		}, nil
	default:
		return nil, fmt.Errorf("unknown images strategy %q", cfg.Images.Strategy)
	}
}

// CDNResolver maps keys onto a CDN domain. The CDN fetches from object
// storage at the origin, so no credentials appear in the URL.
type CDNResolver struct {
	Domain string
}

func (r *CDNResolver) ResolveURL(key string) (string, error) {
	if IsAbsoluteURL(key) {
		return key, nil
	}
	return "https://" + r.Domain + "/" + strings.TrimPrefix(key, "/"), nil
}

// SignedResolver issues short-lived presigned GET URLs for object keys.
type SignedResolver struct {
	Presigner *s3.PresignClient
	Bucket    string
	TTL       time.Duration
}

func (r *SignedResolver) ResolveURL(key string) (string, error) {
	if IsAbsoluteURL(key) {
		return key, nil
	}
	req, err := r.Presigner.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(strings.TrimPrefix(key, "/")),
	}, s3.WithPresignExpires(r.TTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign %q: %w", key, err)
	}
	return req.URL, nil
}
