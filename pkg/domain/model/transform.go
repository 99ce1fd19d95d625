package model

import (
	"context"
	"encoding/json"
)

// TransformFunc is a bound, contract-validated transform. Binding happens
// once at rule construction; invocation happens once per matched rule.
type TransformFunc func(ctx context.Context, ev *CanonicalEvent) (*TransformResult, error)

// TransformResult carries per-destination-type overrides produced by a
// transform. Only the entry keyed by the rule's own destination type is
// consulted during dispatch; unrelated entries are ignored.
type TransformResult struct {
	CodeBuild    *CodeBuildOverride    `json:"codebuild,omitempty"`
	CodePipeline *CodePipelineOverride `json:"codepipeline,omitempty"`
	Lambda       *LambdaOverride       `json:"lambdafunction,omitempty"`
}

// BuildEnvVar is a CodeBuild environment variable override entry.
type BuildEnvVar struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
	// Type is PLAINTEXT, PARAMETER_STORE or SECRETS_MANAGER.
	// Empty means PLAINTEXT.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// PipelineVariable is a CodePipeline execution variable.
type PipelineVariable struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// CodeBuildOverride replaces fields of a CodeBuild destination. A nil
// field keeps the base value; a present field replaces it wholesale,
// including list-valued fields.
type CodeBuildOverride struct {
	ProjectName          *string       `json:"project_name,omitempty"`
	EnvironmentVariables []BuildEnvVar `json:"environment_variables,omitempty"`
}

// CodePipelineOverride replaces fields of a CodePipeline destination.
type CodePipelineOverride struct {
	PipelineName *string            `json:"pipeline_name,omitempty"`
	Variables    []PipelineVariable `json:"variables,omitempty"`
}

// LambdaOverride replaces fields of a Lambda destination. Payload may be
// any JSON value; a JSON string is sent as its unquoted bytes.
type LambdaOverride struct {
	FunctionName *string         `json:"function_name,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}
