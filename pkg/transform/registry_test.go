package transform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/launch-dso/hookrelay/pkg/transform"
)

func TestRegister(t *testing.T) {
	fn := func(ev map[string]any) map[string]any { return nil }

	t.Run("resolve registered path", func(t *testing.T) {
		if err := transform.Register("registry_test/ok", fn); err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		bound, err := transform.Resolve("registry_test/ok")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if _, err := bound(context.Background(), testEvent()); err != nil {
			t.Errorf("resolved transform error = %v", err)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		_, err := transform.Resolve("registry_test/missing")
		if err == nil {
			t.Fatal("Resolve() should fail for an unregistered path")
		}
		if !errors.Is(err, types.ErrTransformResolve) {
			t.Errorf("Resolve() error = %v, want ErrTransformResolve", err)
		}
	})

	t.Run("duplicate registration", func(t *testing.T) {
		if err := transform.Register("registry_test/dup", fn); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		err := transform.Register("registry_test/dup", fn)
		if !errors.Is(err, types.ErrTransformResolve) {
			t.Errorf("Register() duplicate error = %v, want ErrTransformResolve", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		err := transform.Register("", fn)
		if !errors.Is(err, types.ErrTransformResolve) {
			t.Errorf("Register() empty path error = %v, want ErrTransformResolve", err)
		}
	})

	t.Run("invalid callable rejected at registration", func(t *testing.T) {
		err := transform.Register("registry_test/bad", func() {})
		if !errors.Is(err, types.ErrTransformContract) {
			t.Errorf("Register() error = %v, want ErrTransformContract", err)
		}
	})

	t.Run("bind by path", func(t *testing.T) {
		if err := transform.Register("registry_test/bind", fn); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		bound, err := transform.Bind(transform.Ref{Path: "registry_test/bind"})
		if err != nil {
			t.Fatalf("Bind() error = %v", err)
		}
		if bound == nil {
			t.Fatal("Bind() returned nil for a registered path")
		}
	})
}
