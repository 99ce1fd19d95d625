package model

import (
	"encoding/json"

	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultSessionName is used when a destination does not configure its
// own role session name.
const DefaultSessionName = "hookrelay"

// Destination describes the action a rule triggers. Merge returns an
// effective copy with the transform's overrides applied; the receiver is
// never mutated.
type Destination interface {
	Type() types.DestinationType
	// Target is the identifying field of the destination (project,
	// pipeline or function name) used in diagnostics
	Target() string
	// Role returns the credential scope, nil when no credentials are
	// required
	Role() *RoleSpec
	Merge(tr *TransformResult) Destination
	Validate() error
}

// RoleSpec is the credential scope of a dispatch: the role to assume and
// how to present the session.
type RoleSpec struct {
	RoleArn     string
	ExternalID  string
	Region      string
	SessionName string
}

func (r *RoleSpec) validate() error {
	if r.RoleArn == "" {
		return goerr.New("role_arn is required")
	}
	if r.SessionName == "" {
		r.SessionName = DefaultSessionName
	}
	return nil
}

// NoDestination performs no action and requires no credentials.
type NoDestination struct{}

func (d *NoDestination) Type() types.DestinationType       { return types.DestNone }
func (d *NoDestination) Target() string                    { return "" }
func (d *NoDestination) Role() *RoleSpec                   { return nil }
func (d *NoDestination) Merge(_ *TransformResult) Destination { return d }
func (d *NoDestination) Validate() error                   { return nil }

// CodeBuildDestination starts a CodeBuild project build.
type CodeBuildDestination struct {
	RoleSpec
	ProjectName          string
	EnvironmentVariables []BuildEnvVar
}

func (d *CodeBuildDestination) Type() types.DestinationType { return types.DestCodeBuild }
func (d *CodeBuildDestination) Target() string              { return d.ProjectName }
func (d *CodeBuildDestination) Role() *RoleSpec             { return &d.RoleSpec }

func (d *CodeBuildDestination) Merge(tr *TransformResult) Destination {
	eff := *d
	if tr == nil || tr.CodeBuild == nil {
		return &eff
	}
	if o := tr.CodeBuild; o != nil {
		if o.ProjectName != nil {
			eff.ProjectName = *o.ProjectName
		}
		if o.EnvironmentVariables != nil {
			eff.EnvironmentVariables = o.EnvironmentVariables
		}
	}
	return &eff
}

func (d *CodeBuildDestination) Validate() error {
	if d.ProjectName == "" {
		return goerr.New("codebuild destination requires a project name")
	}
	return d.RoleSpec.validate()
}

// CodePipelineDestination starts a CodePipeline execution.
type CodePipelineDestination struct {
	RoleSpec
	PipelineName string
	Variables    []PipelineVariable
}

func (d *CodePipelineDestination) Type() types.DestinationType { return types.DestCodePipeline }
func (d *CodePipelineDestination) Target() string              { return d.PipelineName }
func (d *CodePipelineDestination) Role() *RoleSpec             { return &d.RoleSpec }

func (d *CodePipelineDestination) Merge(tr *TransformResult) Destination {
	eff := *d
	if tr == nil || tr.CodePipeline == nil {
		return &eff
	}
	if o := tr.CodePipeline; o != nil {
		if o.PipelineName != nil {
			eff.PipelineName = *o.PipelineName
		}
		if o.Variables != nil {
			eff.Variables = o.Variables
		}
	}
	return &eff
}

func (d *CodePipelineDestination) Validate() error {
	if d.PipelineName == "" {
		return goerr.New("codepipeline destination requires a pipeline name")
	}
	return d.RoleSpec.validate()
}

// LambdaDestination invokes a Lambda function.
type LambdaDestination struct {
	RoleSpec
	FunctionName string
	Payload      json.RawMessage
}

func (d *LambdaDestination) Type() types.DestinationType { return types.DestLambda }
func (d *LambdaDestination) Target() string              { return d.FunctionName }
func (d *LambdaDestination) Role() *RoleSpec             { return &d.RoleSpec }

func (d *LambdaDestination) Merge(tr *TransformResult) Destination {
	eff := *d
	if tr == nil || tr.Lambda == nil {
		return &eff
	}
	if o := tr.Lambda; o != nil {
		if o.FunctionName != nil {
			eff.FunctionName = *o.FunctionName
		}
		if o.Payload != nil {
			eff.Payload = o.Payload
		}
	}
	return &eff
}

func (d *LambdaDestination) Validate() error {
	if d.FunctionName == "" {
		return goerr.New("lambda destination requires a function name")
	}
	return d.RoleSpec.validate()
}

// PayloadBytes renders the payload for the Invoke call. A JSON string
// becomes its unquoted bytes; any other JSON value is sent verbatim.
func (d *LambdaDestination) PayloadBytes() []byte {
	if len(d.Payload) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(d.Payload, &s); err == nil {
		return []byte(s)
	}
	return []byte(d.Payload)
}
