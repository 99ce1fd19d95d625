package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	cptypes "github.com/aws/aws-sdk-go-v2/service/codepipeline/types"
	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// CodePipelineProvider starts pipeline executions under per-dispatch
// scoped credentials.
type CodePipelineProvider struct {
	base aws.Config
}

// NewCodePipelineProvider creates a provider over the base config.
func NewCodePipelineProvider(cfg aws.Config) *CodePipelineProvider {
	return &CodePipelineProvider{base: cfg}
}

// Invoke starts an execution of the merged destination's pipeline.
func (p *CodePipelineProvider) Invoke(ctx context.Context, dst model.Destination, cred *model.Credential) error {
	d, ok := dst.(*model.CodePipelineDestination)
	if !ok {
		return goerr.New("codepipeline provider received a non-codepipeline destination",
			goerr.V("type", dst.Type()))
	}
	if cred == nil {
		return goerr.New("codepipeline dispatch requires scoped credentials",
			goerr.V("pipeline", d.PipelineName))
	}

	input := &codepipeline.StartPipelineExecutionInput{
		Name: aws.String(d.PipelineName),
	}
	for _, v := range d.Variables {
		input.Variables = append(input.Variables, cptypes.PipelineVariable{
			Name:  aws.String(v.Name),
			Value: aws.String(v.Value),
		})
	}

	client := codepipeline.NewFromConfig(scopedConfig(p.base, cred, d.Region))
	if _, err := client.StartPipelineExecution(ctx, input); err != nil {
		return goerr.Wrap(err, "start pipeline execution", goerr.V("pipeline", d.PipelineName))
	}
	return nil
}
