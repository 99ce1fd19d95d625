package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// LambdaProvider invokes functions under per-dispatch scoped
// credentials.
type LambdaProvider struct {
	base aws.Config
}

// NewLambdaProvider creates a provider over the base config.
func NewLambdaProvider(cfg aws.Config) *LambdaProvider {
	return &LambdaProvider{base: cfg}
}

// Invoke calls the merged destination's function with its payload.
func (p *LambdaProvider) Invoke(ctx context.Context, dst model.Destination, cred *model.Credential) error {
	d, ok := dst.(*model.LambdaDestination)
	if !ok {
		return goerr.New("lambda provider received a non-lambda destination",
			goerr.V("type", dst.Type()))
	}
	if cred == nil {
		return goerr.New("lambda dispatch requires scoped credentials",
			goerr.V("function", d.FunctionName))
	}

	client := lambda.NewFromConfig(scopedConfig(p.base, cred, d.Region))
	_, err := client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(d.FunctionName),
		Payload:      d.PayloadBytes(),
	})
	if err != nil {
		return goerr.Wrap(err, "invoke function", goerr.V("function", d.FunctionName))
	}
	return nil
}
