package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultSessionDuration matches the shortest duration STS allows; the
// credential only needs to outlive a single action call.
const DefaultSessionDuration = 15 * time.Minute

// CredentialBroker exchanges a role scope for temporary credentials via
// STS AssumeRole. Every call performs a fresh exchange.
type CredentialBroker struct {
	client   *sts.Client
	duration time.Duration
}

// NewCredentialBroker creates a broker on the base (unscoped) config.
func NewCredentialBroker(cfg aws.Config, duration time.Duration) *CredentialBroker {
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	return &CredentialBroker{
		client:   sts.NewFromConfig(cfg),
		duration: duration,
	}
}

// Assume exchanges the role scope for time-bound credentials.
func (b *CredentialBroker) Assume(ctx context.Context, role model.RoleSpec) (*model.Credential, error) {
	input := &sts.AssumeRoleInput{
		RoleArn:         aws.String(role.RoleArn),
		RoleSessionName: aws.String(role.SessionName),
		DurationSeconds: aws.Int32(int32(b.duration.Seconds())),
	}
	if role.ExternalID != "" {
		input.ExternalId = aws.String(role.ExternalID)
	}

	out, err := b.client.AssumeRole(ctx, input)
	if err != nil {
		return nil, goerr.Wrap(err, "sts assume role",
			goerr.V("role", role.RoleArn), goerr.V("session", role.SessionName))
	}

	c := out.Credentials
	return &model.Credential{
		AccessKeyID:     aws.ToString(c.AccessKeyId),
		SecretAccessKey: aws.ToString(c.SecretAccessKey),
		SessionToken:    aws.ToString(c.SessionToken),
		Expiration:      aws.ToTime(c.Expiration),
	}, nil
}
