package invalidation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/google/uuid"

	"github.com/kyomu-reader/kyomu/internal/config"
)

// CDNInvalidator discards cached copies of the given paths at the edge.
type CDNInvalidator interface {
	Invalidate(ctx context.Context, paths []string) error
}

// CloudFrontInvalidator creates path invalidations against one CloudFront
// distribution. Every call carries a unique caller reference, as the API
// requires; repeating an invalidation for the same paths is harmless, so
// at-least-once event delivery is safe.
type CloudFrontInvalidator struct {
	client         *cloudfront.Client
	distributionID string
}

// NewCloudFrontInvalidator loads AWS configuration from the environment
// and returns an invalidator for the configured distribution.
func NewCloudFrontInvalidator(ctx context.Context, cfg *config.Config) (*CloudFrontInvalidator, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &CloudFrontInvalidator{
		client:         cloudfront.NewFromConfig(awsCfg),
		distributionID: cfg.CDN.DistributionID,
	}, nil
}

func (c *CloudFrontInvalidator) Invalidate(ctx context.Context, paths []string) error {
	ref := fmt.Sprintf("kyomu-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	out, err := c.client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(c.distributionID),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(ref),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(int32(len(paths))),
				Items:    paths,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("cloudfront invalidation failed: %w", err)
	}
	log.Printf("CloudFront invalidation created: %s", aws.ToString(out.Invalidation.Id))
	return nil
}
