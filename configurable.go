package diwrap

import "sync"

// ConfigurableDependency creates an injector whose constructor takes a
// configuration argument. Multi-knob constructors take a config struct.
func ConfigurableDependency[C, D any](constructor func(C) (D, error)) *ConfigurableInjector[C, D] {
	return &ConfigurableInjector[C, D]{constructor: constructor}
}

type ConfigurableInjector[C, D any] struct {
	constructor func(C) (D, error)
	mu          sync.RWMutex
}

// With binds cfg and returns a plain injector for it.
// The bound injector reads the constructor at call time,
// so fakes applied afterwards still take effect.
func (inj *ConfigurableInjector[C, D]) With(cfg C) *Injector[D] {
	return Dependency(func() (D, error) {
		return inj.current()(cfg)
	})
}

// FakeValue replaces the constructor with one returning val for any config.
// The returned restore func puts the previous constructor back.
func (inj *ConfigurableInjector[C, D]) FakeValue(val D) (restore func()) {
	return inj.swap(func(C) (D, error) {
		return val, nil
	})
}

// Faker returns a reusable activation func for a fake constructor.
// Calling the activation swaps the constructor in and returns a restore func.
func (inj *ConfigurableInjector[C, D]) Faker(fake func(C) (D, error)) func() (restore func()) {
	return func() func() {
		return inj.swap(fake)
	}
}

func (inj *ConfigurableInjector[C, D]) current() func(C) (D, error) {
	inj.mu.RLock()
	defer inj.mu.RUnlock()

	return inj.constructor
}

func (inj *ConfigurableInjector[C, D]) swap(constructor func(C) (D, error)) (restore func()) {
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
