package config

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// AWS holds base AWS client configuration
type AWS struct {
	Region          string
	SessionDuration time.Duration
}

// Flags returns CLI flags for AWS configuration
func (c *AWS) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "aws-region",
			Usage:       "Default AWS region (destination regions override per dispatch)",
			Destination: &c.Region,
			Sources:     cli.EnvVars("HOOKRELAY_AWS_REGION", "AWS_REGION"),
		},
		&cli.DurationFlag{
			Name:        "session-duration",
			Usage:       "Assumed role session duration",
			Value:       15 * time.Minute,
			Destination: &c.SessionDuration,
			Sources:     cli.EnvVars("HOOKRELAY_SESSION_DURATION"),
		},
	}
}

// Load builds the base (unscoped) AWS configuration.
func (c *AWS) Load(ctx context.Context) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, goerr.Wrap(err, "failed to load AWS configuration")
	}
	return cfg, nil
}
