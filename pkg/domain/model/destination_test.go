package model_test

import (
	"encoding/json"
	"testing"

	"github.com/launch-dso/hookrelay/pkg/domain/model"
)

func strptr(s string) *string { return &s }

func TestCodeBuildDestination_Merge(t *testing.T) {
	base := &model.CodeBuildDestination{
		RoleSpec:    model.RoleSpec{RoleArn: "arn:aws:iam::123456789012:role/deploy"},
		ProjectName: "base-project",
		EnvironmentVariables: []model.BuildEnvVar{
			{Name: "STAGE", Value: "dev"},
			{Name: "REGION", Value: "us-east-1"},
		},
	}

	t.Run("nil result keeps base", func(t *testing.T) {
		eff := base.Merge(nil).(*model.CodeBuildDestination)
		if eff.ProjectName != "base-project" {
			t.Errorf("ProjectName = %v, want base-project", eff.ProjectName)
		}
		if len(eff.EnvironmentVariables) != 2 {
			t.Errorf("EnvironmentVariables = %d entries, want 2", len(eff.EnvironmentVariables))
		}
	})

	t.Run("project name override replaces", func(t *testing.T) {
		tr := &model.TransformResult{
			CodeBuild: &model.CodeBuildOverride{ProjectName: strptr("hotfix-project")},
		}
		got := base.Merge(tr).(*model.CodeBuildDestination)
		if got.ProjectName != "hotfix-project" {
			t.Errorf("ProjectName = %v, want hotfix-project", got.ProjectName)
		}
		// Absent field keeps base value
		if len(got.EnvironmentVariables) != 2 {
			t.Errorf("EnvironmentVariables = %d entries, want 2", len(got.EnvironmentVariables))
		}
	})

	t.Run("list override replaces wholesale", func(t *testing.T) {
		tr := &model.TransformResult{
			CodeBuild: &model.CodeBuildOverride{
				EnvironmentVariables: []model.BuildEnvVar{{Name: "ONLY", Value: "one"}},
			},
		}
		got := base.Merge(tr).(*model.CodeBuildDestination)
		if len(got.EnvironmentVariables) != 1 {
			t.Fatalf("EnvironmentVariables = %d entries, want 1 (replace, not append)", len(got.EnvironmentVariables))
		}
		if got.EnvironmentVariables[0].Name != "ONLY" {
			t.Errorf("EnvironmentVariables[0].Name = %v, want ONLY", got.EnvironmentVariables[0].Name)
		}
	})

	t.Run("override for other destination type is ignored", func(t *testing.T) {
		tr := &model.TransformResult{
			Lambda: &model.LambdaOverride{FunctionName: strptr("other-fn")},
		}
		got := base.Merge(tr).(*model.CodeBuildDestination)
		if got.ProjectName != "base-project" {
			t.Errorf("ProjectName = %v, want base-project", got.ProjectName)
		}
	})

	t.Run("merge does not mutate the base", func(t *testing.T) {
		tr := &model.TransformResult{
			CodeBuild: &model.CodeBuildOverride{ProjectName: strptr("changed")},
		}
		_ = base.Merge(tr)
		if base.ProjectName != "base-project" {
			t.Errorf("base ProjectName mutated to %v", base.ProjectName)
		}
	})
}

func TestCodePipelineDestination_Merge(t *testing.T) {
	base := &model.CodePipelineDestination{
		RoleSpec:     model.RoleSpec{RoleArn: "arn:aws:iam::123456789012:role/deploy"},
		PipelineName: "release",
		Variables:    []model.PipelineVariable{{Name: "VERSION", Value: "1.0"}},
	}

	tr := &model.TransformResult{
		CodePipeline: &model.CodePipelineOverride{
			PipelineName: strptr("release-hotfix"),
		},
	}
	got := base.Merge(tr).(*model.CodePipelineDestination)
	if got.PipelineName != "release-hotfix" {
		t.Errorf("PipelineName = %v, want release-hotfix", got.PipelineName)
	}
	if len(got.Variables) != 1 || got.Variables[0].Name != "VERSION" {
		t.Errorf("Variables = %v, want base variables kept", got.Variables)
	}
}

func TestLambdaDestination_Merge(t *testing.T) {
	base := &model.LambdaDestination{
		RoleSpec:     model.RoleSpec{RoleArn: "arn:aws:iam::123456789012:role/invoke"},
		FunctionName: "notify",
		Payload:      json.RawMessage(`{"kind":"base"}`),
	}

	tr := &model.TransformResult{
		Lambda: &model.LambdaOverride{
			Payload: json.RawMessage(`{"kind":"override"}`),
		},
	}
	got := base.Merge(tr).(*model.LambdaDestination)
	if got.FunctionName != "notify" {
		t.Errorf("FunctionName = %v, want notify", got.FunctionName)
	}
	if string(got.Payload) != `{"kind":"override"}` {
		t.Errorf("Payload = %s, want override payload", got.Payload)
	}
}

func TestLambdaDestination_PayloadBytes(t *testing.T) {
	tests := []struct {
		name     string
		payload  json.RawMessage
		expected string
	}{
		{
			name:     "JSON string is unquoted",
			payload:  json.RawMessage(`"hello"`),
			expected: "hello",
		},
		{
			name:     "JSON object sent verbatim",
			payload:  json.RawMessage(`{"a":1}`),
			expected: `{"a":1}`,
		},
		{
			name:     "Empty payload yields nil",
			payload:  nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &model.LambdaDestination{FunctionName: "fn", Payload: tt.payload}
			got := string(d.PayloadBytes())
			if got != tt.expected {
				t.Errorf("PayloadBytes() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDestination_Validate(t *testing.T) {
	tests := []struct {
		name    string
		dest    model.Destination
		wantErr bool
	}{
		{
			name:    "NoDestination always valid",
			dest:    &model.NoDestination{},
			wantErr: false,
		},
		{
			name: "CodeBuild valid",
			dest: &model.CodeBuildDestination{
				RoleSpec:    model.RoleSpec{RoleArn: "arn:aws:iam::123456789012:role/x"},
				ProjectName: "p",
			},
			wantErr: false,
		},
		{
			name: "CodeBuild missing project name",
			dest: &model.CodeBuildDestination{
				RoleSpec: model.RoleSpec{RoleArn: "arn:aws:iam::123456789012:role/x"},
			},
			wantErr: true,
		},
		{
			name: "CodeBuild missing role arn",
			dest: &model.CodeBuildDestination{
				ProjectName: "p",
			},
			wantErr: true,
		},
		{
			name: "Lambda missing function name",
			dest: &model.LambdaDestination{
				RoleSpec: model.RoleSpec{RoleArn: "arn:aws:iam::123456789012:role/x"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dest.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoleSpec_DefaultSessionName(t *testing.T) {
	d := &model.CodeBuildDestination{
		RoleSpec:    model.RoleSpec{RoleArn: "arn:aws:iam::123456789012:role/x"},
		ProjectName: "p",
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}
	if d.SessionName != model.DefaultSessionName {
		t.Errorf("SessionName = %v, want %v", d.SessionName, model.DefaultSessionName)
	}
}
