package diwrap

import "reflect"

// taskWrapper rewrites a task signature: the leading task parameters are
// produced by resolve on every call, the first consume wrapped arguments feed
// resolve instead of the task.
type taskWrapper struct {
	resolve func(args []reflect.Value) ([]reflect.Value, error)
	task    reflect.Value
	ins     []reflect.Type
	outs    []reflect.Type
	errIdx  int
	consume int
}

// checkTask validates that task is a non-variadic function able to accept the
// dependency type as its first argument.
func checkTask(dependency reflect.Type, task any) (reflect.Value, reflect.Type, error) {
	t := reflect.TypeOf(task)

	if t == nil || t.Kind() != reflect.Func {
		return reflect.Value{}, nil, newBadTaskError(ErrTaskNotAFunction, t)
	}

	if t.IsVariadic() {
		return reflect.Value{}, nil, newBadTaskError(ErrVariadicTask, t)
	}

	if t.NumIn() == 0 || !dependency.AssignableTo(t.In(0)) {
		return reflect.Value{}, nil, newBadTaskError(&DependencyTypeError{Dependency: dependency}, t)
	}

	return reflect.ValueOf(task), t, nil
}

func outsOf(t reflect.Type) []reflect.Type {
	outs := make([]reflect.Type, t.NumOut())
	for i := range outs {
		outs[i] = t.Out(i)
	}

	return outs
}

// fn assembles the wrapped function.
// Resolution failures are returned through the task's trailing error result;
// a task without one panics with the same error.
func (w *taskWrapper) fn() any {
	w.errIdx = -1
	if n := len(w.outs); n > 0 && w.outs[n-1] == errorInterface {
		w.errIdx = n - 1
	}

	wrapped := reflect.FuncOf(w.ins, w.outs, false)

	return reflect.MakeFunc(wrapped, func(args []reflect.Value) []reflect.Value {
		leads, err := w.resolve(args)
		if err != nil {
			if w.errIdx < 0 {
				panic(err)
			}

			results := make([]reflect.Value, len(w.outs))
			for i, out := range w.outs {
				results[i] = reflect.Zero(out)
			}

			results[w.errIdx] = reflect.ValueOf(&err).Elem()

			return results
		}

		callArgs := make([]reflect.Value, 0, len(leads)+len(args)-w.consume)
		callArgs = append(callArgs, leads...)
		callArgs = append(callArgs, args[w.consume:]...)

		return w.task.Call(callArgs)
	}).Interface()
}

// leadValue keeps the static dependency type, which matters for interface and
// zero-valued dependencies.
func leadValue[D any](value D) reflect.Value {
	return reflect.ValueOf(&value).Elem()
}
