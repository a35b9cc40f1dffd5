package diwrap

import (
	"fmt"
	"reflect"
	"sync"
)

// Constructor creates a new instance of a dependency.
type Constructor[D any] func() (D, error)

// Pure adapts a constructor that cannot fail.
func Pure[D any](constructor func() D) Constructor[D] {
	return func() (D, error) {
		return constructor(), nil
	}
}

// Singleton makes constructor construct its value at most once.
// Every later call returns the same instance and the same error.
func Singleton[D any](constructor Constructor[D]) Constructor[D] {
	var (
		once  sync.Once
		value D
		err   error
	)

	return func() (D, error) {
		once.Do(func() {
			value, err = constructor()
		})

		return value, err
	}
}

// Dependency creates an injector from a constructor function.
func Dependency[D any](constructor Constructor[D]) *Injector[D] {
	return &Injector[D]{constructor: constructor}
}

// Injector supplies a constructed dependency as the leading argument of tasks.
// The zero value is not usable; create injectors with Dependency.
type Injector[D any] struct {
	constructor Constructor[D]
	mu          sync.RWMutex
}

// Resolve constructs the dependency.
// Constructor failures and recovered constructor panics are returned as *ConstructorError.
func (inj *Injector[D]) Resolve() (value D, err error) {
	defer func() {
		if rp := recover(); rp != nil {
			err = newConstructorError(fmt.Errorf("recovered from panic: %v", rp))
		}
	}()

	value, err = inj.current()()
	if err != nil {
		var zero D
		return zero, newConstructorError(err)
	}

	return value, nil
}

// MustResolve is like Resolve but panics on error.
func (inj *Injector[D]) MustResolve() D {
	value, err := inj.Resolve()
	if err != nil {
		panic(err)
	}

	return value
}

// Inject decorates a task whose first parameter accepts the dependency.
// It returns a function with that parameter removed: every call constructs the
// dependency and forwards it to the task.
// Construction failures are returned through the task's trailing error result,
// or panic if the task has none.
func (inj *Injector[D]) Inject(task any) (any, error) {
	tv, t, err := checkTask(reflect.TypeOf((*D)(nil)).Elem(), task)
	if err != nil {
		return nil, err
	}

	ins := make([]reflect.Type, 0, t.NumIn()-1)
	for i := 1; i < t.NumIn(); i++ {
		ins = append(ins, t.In(i))
	}

	w := &taskWrapper{
		task: tv,
		ins:  ins,
		outs: outsOf(t),
		resolve: func([]reflect.Value) ([]reflect.Value, error) {
			value, err := inj.Resolve()
			if err != nil {
				return nil, err
			}

			return []reflect.Value{leadValue(value)}, nil
		},
	}

	return w.fn(), nil
}

// MustInject is like Inject but panics on error.
func (inj *Injector[D]) MustInject(task any) any {
	wrapped, err := inj.Inject(task)
	if err != nil {
		panic(err)
	}

	return wrapped
}

// FakeValue replaces the constructor with one returning val.
// The returned restore func puts the previous constructor back:
//
//	restore := inj.FakeValue(42)
//	defer restore()
func (inj *Injector[D]) FakeValue(val D) (restore func()) {
	return inj.swap(func() (D, error) {
		return val, nil
	})
}

// Faker returns a reusable activation func for a fake constructor.
// Calling the activation swaps the constructor in and returns a restore func.
func (inj *Injector[D]) Faker(fake Constructor[D]) func() (restore func()) {
	return func() func() {
		return inj.swap(fake)
	}
}

func (inj *Injector[D]) current() Constructor[D] {
	inj.mu.RLock()
	defer inj.mu.RUnlock()

	return inj.constructor
}

func (inj *Injector[D]) swap(constructor Constructor[D]) (restore func()) {
	inj.mu.Lock()
	prev := inj.constructor
	inj.constructor = constructor
	inj.mu.Unlock()

	return func() {
		inj.mu.Lock()
		inj.constructor = prev
		inj.mu.Unlock()
	}
}
