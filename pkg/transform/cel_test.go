package transform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/launch-dso/hookrelay/pkg/transform"
)

func TestCompile(t *testing.T) {
	t.Run("compile failure surfaces at construction", func(t *testing.T) {
		_, err := transform.Compile(`{"codebuild": `)
		if err == nil {
			t.Fatal("Compile() should reject a syntactically invalid expression")
		}
		if !errors.Is(err, types.ErrTransformContract) {
			t.Errorf("Compile() error = %v, want ErrTransformContract", err)
		}
	})

	t.Run("expression builds overrides from event fields", func(t *testing.T) {
		fn, err := transform.Compile(`{"codebuild": {"project_name": repository + "-build"}}`)
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}

		tr, err := fn(context.Background(), testEvent())
		if err != nil {
			t.Fatalf("expression transform error = %v", err)
		}
		if tr.CodeBuild == nil || tr.CodeBuild.ProjectName == nil {
			t.Fatal("codebuild override not produced")
		}
		if *tr.CodeBuild.ProjectName != "widget-build" {
			t.Errorf("ProjectName = %v, want widget-build", *tr.CodeBuild.ProjectName)
		}
	})

	t.Run("expression reads payload fields", func(t *testing.T) {
		fn, err := transform.Compile(`{"codepipeline": {"variables": [{"name": "REF", "value": payload.ref}]}}`)
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}

		tr, err := fn(context.Background(), testEvent())
		if err != nil {
			t.Fatalf("expression transform error = %v", err)
		}
		if tr.CodePipeline == nil || len(tr.CodePipeline.Variables) != 1 {
			t.Fatal("codepipeline override not produced")
		}
		v := tr.CodePipeline.Variables[0]
		if v.Name != "REF" || v.Value != "refs/heads/main" {
			t.Errorf("variable = %+v, want REF=refs/heads/main", v)
		}
	})

	t.Run("non-mapping result fails at invocation", func(t *testing.T) {
		fn, err := transform.Compile(`repository`)
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		if _, err := fn(context.Background(), testEvent()); err == nil {
			t.Error("expression evaluating to a string should fail")
		}
	})

	t.Run("empty mapping yields no overrides", func(t *testing.T) {
		fn, err := transform.Compile(`{}`)
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		tr, err := fn(context.Background(), testEvent())
		if err != nil {
			t.Fatalf("expression transform error = %v", err)
		}
		if tr.CodeBuild != nil || tr.CodePipeline != nil || tr.Lambda != nil {
			t.Errorf("empty expression produced overrides: %+v", tr)
		}
	})
}
