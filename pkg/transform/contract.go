package transform

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Ref is a tagged reference to a transform. Exactly one field may be
// set; a zero Ref selects the identity transform.
type Ref struct {
	// Inline is a Go callable satisfying the transform contract
	Inline any
	// Path names a transform registered via Register
	Path string
	// Expr is a CEL expression evaluated against the canonical event
	Expr string
}

// Bind resolves and validates a reference, returning a bound callable.
// All failures here are construction-time failures: a bound transform
// can no longer violate its contract at dispatch time. A zero reference
// binds to nil, which model.NewRule replaces with the identity
// transform.
func Bind(ref Ref) (model.TransformFunc, error) {
	set := 0
	if ref.Inline != nil {
		set++
	}
	if ref.Path != "" {
		set++
	}
	if ref.Expr != "" {
		set++
	}
	switch {
	case set == 0:
		return nil, nil
	case set > 1:
		return nil, goerr.Wrap(types.ErrTransformContract, "transform reference must set exactly one of inline, path, expr")
	}

	if ref.Inline != nil {
		return bindCallable(ref.Inline)
	}
	if ref.Path != "" {
		return Resolve(ref.Path)
	}
	return Compile(ref.Expr)
}

var (
	ctxType       = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType       = reflect.TypeOf((*error)(nil)).Elem()
	mapType       = reflect.TypeOf(map[string]any{})
	eventType     = reflect.TypeOf(&model.CanonicalEvent{})
	resultType    = reflect.TypeOf(model.TransformResult{})
	resultPtrType = reflect.TypeOf(&model.TransformResult{})
)

// bindCallable validates an inline callable against the transform
// contract and wraps it into a TransformFunc. Accepted shapes:
//
//	func([ctx,] event map[string]any | *model.CanonicalEvent)
//	     (map[string]any | model.TransformResult | *model.TransformResult[, error])
//
// Validation runs exactly once, here; the returned closure performs no
// further introspection.
func bindCallable(fn any) (model.TransformFunc, error) {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, goerr.Wrap(types.ErrTransformContract, "transform must be a function",
			goerr.V("kind", t.Kind().String()))
	}
	if t.IsVariadic() {
		return nil, goerr.Wrap(types.ErrTransformContract, "transform must not be variadic")
	}

	// Parameters: an optional leading context, then the event.
	in := t.NumIn()
	eventIdx := 0
	switch {
	case in == 1:
	case in == 2 && t.In(0) == ctxType:
		eventIdx = 1
	default:
		return nil, goerr.Wrap(types.ErrTransformContract,
			"transform must take the event as its only non-context parameter",
			goerr.V("params", in))
	}
	eventIn := t.In(eventIdx)
	if eventIn != mapType && eventIn != eventType {
		return nil, goerr.Wrap(types.ErrTransformContract,
			"transform event parameter must be map[string]any or *model.CanonicalEvent",
			goerr.V("type", eventIn.String()))
	}

	// Results: the transform result, then an optional error.
	out := t.NumOut()
	switch {
	case out == 1:
	case out == 2 && t.Out(1) == errType:
	default:
		return nil, goerr.Wrap(types.ErrTransformContract,
			"transform must return a result and an optional error",
			goerr.V("results", out))
	}
	resultOut := t.Out(0)
	if resultOut != mapType && resultOut != resultType && resultOut != resultPtrType {
		return nil, goerr.Wrap(types.ErrTransformContract,
			"transform result must be map[string]any, model.TransformResult or *model.TransformResult",
			goerr.V("type", resultOut.String()))
	}

	return func(ctx context.Context, ev *model.CanonicalEvent) (*model.TransformResult, error) {
		args := make([]reflect.Value, 0, 2)
		if eventIdx == 1 {
			args = append(args, reflect.ValueOf(ctx))
		}
		if eventIn == mapType {
			args = append(args, reflect.ValueOf(ev.AsMap()))
		} else {
			args = append(args, reflect.ValueOf(ev))
		}

		rets := v.Call(args)
		if len(rets) == 2 && !rets[1].IsNil() {
			return nil, rets[1].Interface().(error)
		}

		switch resultOut {
		case mapType:
			m, _ := rets[0].Interface().(map[string]any)
			return mapToResult(m)
		case resultType:
			r := rets[0].Interface().(model.TransformResult)
			return &r, nil
		default:
			r, _ := rets[0].Interface().(*model.TransformResult)
			if r == nil {
				r = &model.TransformResult{}
			}
			return r, nil
		}
	}, nil
}

// mapToResult decodes a generic mapping into the override shape. Keys
// that do not name a destination type are ignored, which is what keeps
// overrides for unrelated destination types inert.
func mapToResult(m map[string]any) (*model.TransformResult, error) {
	if m == nil {
		return &model.TransformResult{}, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, goerr.Wrap(err, "transform result is not JSON-representable")
	}
	var result model.TransformResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, goerr.Wrap(err, "transform result does not match the override shape")
	}
	return &result, nil
}
