package diwrap

import (
	"context"
	"fmt"
	"reflect"
)

// ContextualConstructor creates a dependency together with its cleanup.
// The cleanup may be nil when there is nothing to tear down.
type ContextualConstructor[D any] func(ctx context.Context) (D, Cleanup, error)

// ContextualDependency creates an injector that enforces a
// construct/use/teardown lifecycle around the dependency.
func ContextualDependency[D any](constructor ContextualConstructor[D]) *ContextualInjector[D] {
	return &ContextualInjector[D]{constructor: constructor, key: new(scopeKey)}
}

// scopeKey values are compared by pointer identity, one per injector.
type scopeKey struct{}

type ContextualInjector[D any] struct {
	constructor ContextualConstructor[D]
	key         *scopeKey
}

// Ensure constructs the dependency, makes it available through the derived
// context to tasks decorated with Inject, runs scope and tears the dependency
// down afterwards. The cleanup runs even when scope fails; panics inside the
// cleanup are recovered and logged.
func (inj *ContextualInjector[D]) Ensure(ctx context.Context, scope func(context.Context) error) error {
	ctx, _, done, err := inj.enter(ctx)
	if err != nil {
		return err
	}
	defer done()

	return scope(ctx)
}

// EnsureValue runs scope within an Ensure lifecycle and returns its result.
// The result is searched for the constructed dependency and
// *DependencyLeakError is returned when the value escaped the scope.
func EnsureValue[D, R any](
	inj *ContextualInjector[D], ctx context.Context, scope func(context.Context) (R, error),
) (R, error) {
	var zero R

	ctx, value, done, err := inj.enter(ctx)
	if err != nil {
		return zero, err
	}
	defer done()

	result, err := scope(ctx)
	if err != nil {
		return zero, err
	}

	if containsValue(value, result) {
		return zero, newDependencyLeakError(reflect.TypeOf((*D)(nil)).Elem())
	}

	return result, nil
}

// Resolve returns the dependency constructed by the enclosing Ensure scope.
func (inj *ContextualInjector[D]) Resolve(ctx context.Context) (D, error) {
	var zero D

	if ctx == nil {
		return zero, ErrNilContext
	}

	value, ok := ctx.Value(inj.key).(D)
	if !ok {
		return zero, ErrMissingDependencyScope
	}

	return value, nil
}

// Inject decorates a task whose first parameter accepts the dependency.
// The returned function takes a context.Context in its place and reads the
// dependency constructed by the enclosing Ensure scope from it.
// Calls outside an Ensure scope fail with ErrMissingDependencyScope through
// the task's trailing error result, or panic if the task has none.
func (inj *ContextualInjector[D]) Inject(task any) (any, error) {
	tv, t, err := checkTask(reflect.TypeOf((*D)(nil)).Elem(), task)
	if err != nil {
		return nil, err
	}

	ins := make([]reflect.Type, 0, t.NumIn())
	ins = append(ins, contextInterface)
	for i := 1; i < t.NumIn(); i++ {
		ins = append(ins, t.In(i))
	}

	w := &taskWrapper{
		task:    tv,
		ins:     ins,
		outs:    outsOf(t),
		consume: 1,
		resolve: func(args []reflect.Value) ([]reflect.Value, error) {
			ctx, _ := args[0].Interface().(context.Context)

			value, err := inj.Resolve(ctx)
			if err != nil {
				return nil, err
			}

			return []reflect.Value{leadValue(value)}, nil
		},
	}

	return w.fn(), nil
}

// MustInject is like Inject but panics on error.
func (inj *ContextualInjector[D]) MustInject(task any) any {
	wrapped, err := inj.Inject(task)
	if err != nil {
		panic(err)
	}

	return wrapped
}

func (inj *ContextualInjector[D]) enter(ctx context.Context) (context.Context, D, func(), error) {
	var zero D

	if ctx == nil {
		return nil, zero, nil, ErrNilContext
	}

	if err := ctx.Err(); err != nil {
		return nil, zero, nil, err
	}

	value, cleanup, err := inj.construct(ctx)
	if err != nil {
		return nil, zero, nil, err
	}

	if cleanup == nil {
		cleanup = func() {}
	}

	return context.WithValue(ctx, inj.key, value), value, cleanup.CallWithRecovery, nil
}

func (inj *ContextualInjector[D]) construct(ctx context.Context) (value D, cleanup Cleanup, err error) {
	defer func() {
		if rp := recover(); rp != nil {
			cleanup = nil
			err = newConstructorError(fmt.Errorf("recovered from panic: %v", rp))
		}
	}()

	value, cleanup, err = inj.constructor(ctx)
	if err != nil {
		var zero D
		return zero, nil, newConstructorError(err)
	}

	return value, cleanup, nil
}
