package transform

import (
	"sync"

	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// The registry backs path-style transform references. Go has no dynamic
// import, so paths resolve against transforms registered by embedding
// code, typically from an init function. Registration validates the
// contract, so a resolved path is always a bound, valid callable.
var (
	registryMu sync.RWMutex
	registry   = map[string]model.TransformFunc{}
)

// Register binds fn under path. The callable is contract-validated here,
// once; registering an invalid callable fails immediately.
func Register(path string, fn any) error {
	if path == "" {
		return goerr.Wrap(types.ErrTransformResolve, "transform path must not be empty")
	}
	bound, err := bindCallable(fn)
	if err != nil {
		return goerr.Wrap(err, "cannot register transform", goerr.V("path", path))
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[path]; ok {
		return goerr.Wrap(types.ErrTransformResolve, "transform path already registered",
			goerr.V("path", path))
	}
	registry[path] = bound
	return nil
}

// MustRegister is Register for init-time use.
func MustRegister(path string, fn any) {
	if err := Register(path, fn); err != nil {
		panic(err)
	}
}

// Resolve returns the bound callable registered under path.
func Resolve(path string) (model.TransformFunc, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[path]
	if !ok {
		return nil, goerr.Wrap(types.ErrTransformResolve, "no transform registered for path",
			goerr.V("path", path))
	}
	return fn, nil
}
