package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/launch-dso/hookrelay/pkg/transform"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Rules loads an ordered rule document into constructed model rules.
// Construction is fail-fast: a contract, reference or shape defect in
// any rule aborts the load, so defective rules never see live traffic.
type Rules struct {
	Path string
}

// Flags returns CLI flags for rule configuration
func (c *Rules) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "rules",
			Usage:       "Path to the rule document (YAML; JSON is accepted)",
			Required:    true,
			Destination: &c.Path,
			Sources:     cli.EnvVars("HOOKRELAY_RULES"),
		},
	}
}

type ruleDocument struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Name        string           `yaml:"name"`
	Source      sourceEntry      `yaml:"source"`
	Transform   transformEntry   `yaml:"transform"`
	Destination destinationEntry `yaml:"destination"`
}

type sourceEntry struct {
	Type                string   `yaml:"type"`
	Organization        string   `yaml:"organization"`
	ProjectKey          string   `yaml:"project_key"`
	Events              []string `yaml:"events"`
	IncludeRepositories []string `yaml:"include_repositories"`
	ExcludeRepositories []string `yaml:"exclude_repositories"`
	VerifySignature     bool     `yaml:"verify_signature"`
	SignatureSecret     string   `yaml:"signature_secret"`
}

type transformEntry struct {
	Path string `yaml:"path"`
	Expr string `yaml:"expr"`
}

type destinationEntry struct {
	Type        string `yaml:"type"`
	RoleArn     string `yaml:"role_arn"`
	ExternalID  string `yaml:"external_id"`
	Region      string `yaml:"region"`
	SessionName string `yaml:"session_name"`

	ProjectName          string              `yaml:"project_name"`
	EnvironmentVariables []model.BuildEnvVar `yaml:"environment_variables"`

	PipelineName string                   `yaml:"pipeline_name"`
	Variables    []model.PipelineVariable `yaml:"variables"`

	FunctionName string `yaml:"function_name"`
	Payload      any    `yaml:"payload"`
}

// Load reads and constructs the rule sequence in document order.
func (c *Rules) Load() ([]*model.Rule, error) {
	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read rule document", goerr.V("path", c.Path))
	}
	return ParseRules(raw)
}

// ParseRules constructs rules from a YAML document. Unknown fields are
// rejected so that typos in rule documents fail at load, not silently.
func ParseRules(raw []byte) ([]*model.Rule, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var doc ruleDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, goerr.Wrap(err, "rule document is not valid YAML")
	}

	rules := make([]*model.Rule, 0, len(doc.Rules))
	for i, entry := range doc.Rules {
		name := entry.Name
		if name == "" {
			name = fmt.Sprintf("rule-%d", i)
		}

		src, err := buildSource(entry.Source)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid source", goerr.V("rule", name))
		}
		dst, err := buildDestination(entry.Destination)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid destination", goerr.V("rule", name))
		}
		fn, err := transform.Bind(transform.Ref{
			Path: entry.Transform.Path,
			Expr: entry.Transform.Expr,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "invalid transform", goerr.V("rule", name))
		}

		rule, err := model.NewRule(name, src, fn, dst)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func buildSource(entry sourceEntry) (model.Source, error) {
	include, err := model.CompilePatterns(entry.IncludeRepositories)
	if err != nil {
		return nil, err
	}
	exclude, err := model.CompilePatterns(entry.ExcludeRepositories)
	if err != nil {
		return nil, err
	}

	base := model.SourceBase{
		IncludeRepositories: include,
		ExcludeRepositories: exclude,
		Verify:              entry.VerifySignature,
		SignatureSecret:     entry.SignatureSecret,
	}

	switch entry.Type {
	case "github":
		return &model.GitHubSource{
			SourceBase:   base,
			Organization: entry.Organization,
			Events:       entry.Events,
		}, nil
	case "bitbucket_server":
		return &model.BitbucketServerSource{
			SourceBase: base,
			ProjectKey: entry.ProjectKey,
			Events:     entry.Events,
		}, nil
	default:
		return nil, goerr.New("unknown source type", goerr.V("type", entry.Type))
	}
}

func buildDestination(entry destinationEntry) (model.Destination, error) {
	role := model.RoleSpec{
		RoleArn:     entry.RoleArn,
		ExternalID:  entry.ExternalID,
		Region:      entry.Region,
		SessionName: entry.SessionName,
	}

	switch entry.Type {
	case "none":
		return &model.NoDestination{}, nil
	case "codebuild":
		return &model.CodeBuildDestination{
			RoleSpec:             role,
			ProjectName:          entry.ProjectName,
			EnvironmentVariables: entry.EnvironmentVariables,
		}, nil
	case "codepipeline":
		return &model.CodePipelineDestination{
			RoleSpec:     role,
			PipelineName: entry.PipelineName,
			Variables:    entry.Variables,
		}, nil
	case "lambdafunction":
		var payload json.RawMessage
		if entry.Payload != nil {
			raw, err := json.Marshal(entry.Payload)
			if err != nil {
				return nil, goerr.Wrap(err, "lambda payload is not JSON-representable")
			}
			payload = raw
		}
		return &model.LambdaDestination{
			RoleSpec:     role,
			FunctionName: entry.FunctionName,
			Payload:      payload,
		}, nil
	default:
		return nil, goerr.New("unknown destination type", goerr.V("type", entry.Type))
	}
}
