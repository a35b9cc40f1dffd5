package diwrap

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Value is a bindable argument produced by Arg.
type Value struct {
	construct func() (any, error)
}

// Arg marks a constructor as a bindable argument value for Bind.
// The constructor runs on every call of the bound task.
func Arg[D any](constructor Constructor[D]) *Value {
	return &Value{construct: func() (value any, err error) {
		defer func() {
			if rp := recover(); rp != nil {
				value = nil
				err = newConstructorError(fmt.Errorf("recovered from panic: %v", rp))
			}
		}()

		v, err := constructor()
		if err != nil {
			return nil, newConstructorError(err)
		}

		return v, nil
	}}
}

// Bind wraps task, auto-filling its leading parameters from values in order.
// The produced value is coerced to the declared parameter type on every call:
// weakly-typed conversions apply, so an env-var string feeds an int parameter.
// Construction and conversion failures are returned through the task's
// trailing error result, or panic if the task has none.
func Bind(task any, values ...*Value) (any, error) {
	t := reflect.TypeOf(task)

	if t == nil || t.Kind() != reflect.Func {
		return nil, newBadTaskError(ErrTaskNotAFunction, t)
	}

	if t.IsVariadic() {
		return nil, newBadTaskError(ErrVariadicTask, t)
	}

	if t.NumIn() < len(values) {
		return nil, newBadTaskError(ErrTooManyArgValues, t)
	}

	for _, value := range values {
		if value == nil {
			return nil, newBadTaskError(ErrNilArgValue, t)
		}
	}

	ins := make([]reflect.Type, 0, t.NumIn()-len(values))
	for i := len(values); i < t.NumIn(); i++ {
		ins = append(ins, t.In(i))
	}

	w := &taskWrapper{
		task: reflect.ValueOf(task),
		ins:  ins,
		outs: outsOf(t),
		resolve: func([]reflect.Value) ([]reflect.Value, error) {
			leads := make([]reflect.Value, len(values))
			for i, value := range values {
				raw, err := value.construct()
				if err != nil {
					return nil, err
				}

				lead, err := coerce(raw, t.In(i), i)
				if err != nil {
					return nil, err
				}

				leads[i] = lead
			}

			return leads, nil
		},
	}

	return w.fn(), nil
}

// MustBind is like Bind but panics on error.
func MustBind(task any, values ...*Value) any {
	wrapped, err := Bind(task, values...)
	if err != nil {
		panic(err)
	}

	return wrapped
}

func coerce(raw any, to reflect.Type, position int) (reflect.Value, error) {
	if raw == nil {
		switch to.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(to), nil
		}

		return reflect.Value{}, newTypeConversionError(to, raw, position, fmt.Errorf("got nil value"))
	}

	if reflect.TypeOf(raw).AssignableTo(to) {
		return reflect.ValueOf(raw), nil
	}

	out := reflect.New(to)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out.Interface(),
	})
	if err != nil {
		return reflect.Value{}, newTypeConversionError(to, raw, position, err)
	}

	if err := decoder.Decode(raw); err != nil {
		return reflect.Value{}, newTypeConversionError(to, raw, position, err)
	}

	return out.Elem(), nil
}
