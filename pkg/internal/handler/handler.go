// Package handler provides reflection-based handler execution for the worker.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Handler holds metadata about a registered job handler.
type Handler struct {
	Fn       reflect.Value
	ArgsType reflect.Type
}

// NewHandler creates a Handler from a function.
// The function must have signature: func(ctx context.Context, args T) error
func NewHandler(fn any) (*Handler, error) {
	if fn == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	fnVal := reflect.ValueOf(fn)

	// Check for typed nil (e.g., var fn func(...) error = nil)
	if !fnVal.IsValid() || (fnVal.Kind() == reflect.Func && fnVal.IsNil()) {
		return nil, fmt.Errorf("handler function cannot be nil")
	}

	fnType := fnVal.Type()

	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("handler must be a function")
	}

	if fnType.NumIn() != 2 {
		return nil, fmt.Errorf("handler must have signature func(ctx context.Context, args T) error")
	}
	if !fnType.In(0).Implements(contextType) {
		return nil, fmt.Errorf("handler's first argument must be context.Context")
	}

	if fnType.NumOut() != 1 || !fnType.Out(0).Implements(errorType) {
		return nil, fmt.Errorf("handler must return error")
	}

	return &Handler{
		Fn:       fnVal,
		ArgsType: fnType.In(1),
	}, nil
}

// Execute runs the handler, unmarshaling argsJSON into the handler's
// argument type.
func (h *Handler) Execute(ctx context.Context, argsJSON []byte) error {
	if !h.Fn.IsValid() || h.Fn.IsNil() {
		return fmt.Errorf("handler function is nil or invalid")
	}

	argVal := reflect.New(h.ArgsType)
	if err := json.Unmarshal(argsJSON, argVal.Interface()); err != nil {
		return fmt.Errorf("failed to unmarshal args: %w", err)
	}

	results := h.Fn.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		argVal.Elem(),
	})

	if !results[0].IsNil() {
		return results[0].Interface().(error)
	}
	return nil
}
