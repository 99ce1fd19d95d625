package transform

import (
	"context"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// activationVars are the variables a transform expression can reference,
// mirroring CanonicalEvent.AsMap.
var activationVars = []string{"source", "scope", "repository", "event_key", "delivery", "payload"}

// Compile turns a CEL expression into a bound transform. Compilation
// failures surface at rule construction, like every other contract
// defect. The expression must evaluate to a mapping in the override
// shape; keys for unrelated destination types are ignored at dispatch.
func Compile(expr string) (model.TransformFunc, error) {
	opts := make([]cel.EnvOption, 0, len(activationVars)+3)
	for _, name := range activationVars {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	opts = append(opts, ext.Strings(), ext.Encoders(), ext.Math())

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "cel environment")
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, goerr.Wrap(types.ErrTransformContract, "transform expression does not compile",
			goerr.V("expr", expr), goerr.V("issues", issues.Err().Error()))
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, goerr.Wrap(types.ErrTransformContract, "transform expression is not executable",
			goerr.V("expr", expr), goerr.V("cause", err.Error()))
	}

	return func(_ context.Context, ev *model.CanonicalEvent) (*model.TransformResult, error) {
		out, _, err := prg.Eval(ev.AsMap())
		if err != nil {
			return nil, goerr.Wrap(err, "transform expression evaluation")
		}
		native, err := out.ConvertToNative(mapType)
		if err != nil {
			return nil, goerr.Wrap(err, "transform expression must evaluate to a mapping")
		}
		m, _ := native.(map[string]any)
		return mapToResult(m)
	}, nil
}
