package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/launch-dso/hookrelay/pkg/domain/model"
)

// scopedConfig derives a client configuration from the base one, bound
// to a single dispatch's temporary credentials. Nothing is cached: the
// config lives as long as the dispatch that created it.
func scopedConfig(base aws.Config, cred *model.Credential, region string) aws.Config {
	cfg := base.Copy()
	cfg.Credentials = credentials.NewStaticCredentialsProvider(
		cred.AccessKeyID,
		cred.SecretAccessKey,
		cred.SessionToken,
	)
	if region != "" {
		cfg.Region = region
	}
	return cfg
}
