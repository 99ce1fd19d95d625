package transform

import (
	"context"
	"fmt"

	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Invoke runs a bound transform against an event. Panics and errors
// inside user code are captured and wrapped; they never propagate to
// sibling rules of the same event.
func Invoke(ctx context.Context, fn model.TransformFunc, ev *model.CanonicalEvent) (result *model.TransformResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = goerr.Wrap(types.ErrTransformExecution, "panic in transform",
				goerr.V("recover", fmt.Sprint(r)))
		}
	}()

	result, ferr := fn(ctx, ev)
	if ferr != nil {
		return nil, goerr.Wrap(types.ErrTransformExecution, "transform returned an error",
			goerr.V("cause", ferr.Error()))
	}
	if result == nil {
		result = &model.TransformResult{}
	}
	return result, nil
}
