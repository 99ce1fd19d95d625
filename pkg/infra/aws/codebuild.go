package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
	cbtypes "github.com/aws/aws-sdk-go-v2/service/codebuild/types"
	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// CodeBuildProvider starts project builds under per-dispatch scoped
// credentials.
type CodeBuildProvider struct {
	base aws.Config
}

// NewCodeBuildProvider creates a provider over the base config; the
// actual client is built per dispatch from the scoped credential.
func NewCodeBuildProvider(cfg aws.Config) *CodeBuildProvider {
	return &CodeBuildProvider{base: cfg}
}

// Invoke starts a build of the merged destination's project.
func (p *CodeBuildProvider) Invoke(ctx context.Context, dst model.Destination, cred *model.Credential) error {
	d, ok := dst.(*model.CodeBuildDestination)
	if !ok {
		return goerr.New("codebuild provider received a non-codebuild destination",
			goerr.V("type", dst.Type()))
	}
	if cred == nil {
		return goerr.New("codebuild dispatch requires scoped credentials",
			goerr.V("project", d.ProjectName))
	}

	input := &codebuild.StartBuildInput{
		ProjectName: aws.String(d.ProjectName),
	}
	for _, v := range d.EnvironmentVariables {
		varType := cbtypes.EnvironmentVariableTypePlaintext
		if v.Type != "" {
			varType = cbtypes.EnvironmentVariableType(v.Type)
		}
		input.EnvironmentVariablesOverride = append(input.EnvironmentVariablesOverride,
			cbtypes.EnvironmentVariable{
				Name:  aws.String(v.Name),
				Value: aws.String(v.Value),
				Type:  varType,
			})
	}

	client := codebuild.NewFromConfig(scopedConfig(p.base, cred, d.Region))
	if _, err := client.StartBuild(ctx, input); err != nil {
		return goerr.Wrap(err, "start build", goerr.V("project", d.ProjectName))
	}
	return nil
}
