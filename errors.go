package diwrap

import (
	"context"
	"fmt"
	"reflect"
)

var (
	errorInterface   = reflect.TypeOf((*error)(nil)).Elem()
	contextInterface = reflect.TypeOf((*context.Context)(nil)).Elem()

	ErrTaskNotAFunction       = fmt.Errorf("task is not a function")
	ErrVariadicTask           = fmt.Errorf("variadic task is not supported")
	ErrNilContext             = fmt.Errorf("got nil context")
	ErrMissingDependencyScope = fmt.Errorf("dependency is not available: use Ensure")
	ErrNilArgValue            = fmt.Errorf("got nil argument value")
	ErrTooManyArgValues       = fmt.Errorf("more argument values than task parameters")
)

func newBadTaskError(cause error, taskType reflect.Type) error {
	return &BadTaskError{
		cause:    cause,
		TaskType: taskType,
	}
}

type BadTaskError struct {
	cause    error
	TaskType reflect.Type
}

func (err *BadTaskError) Error() string {
	return fmt.Sprintf("bad task %s: %s", err.TaskType, err.cause)
}

func (err *BadTaskError) Unwrap() error {
	return err.cause
}

type DependencyTypeError struct {
	Dependency reflect.Type
}

func (err *DependencyTypeError) Error() string {
	return fmt.Sprintf("task must accept %s as its first argument", err.Dependency)
}

func newConstructorError(cause error) error {
	return &ConstructorError{
		cause: cause,
	}
}

type ConstructorError struct {
	cause error
}

func (err *ConstructorError) Error() string {
	return fmt.Sprintf("constructor returned an error: %s", err.cause)
}

func (err *ConstructorError) Unwrap() error {
	return err.cause
}

func newDependencyLeakError(dependency reflect.Type) error {
	return &DependencyLeakError{
		Dependency: dependency,
	}
}

type DependencyLeakError struct {
	Dependency reflect.Type
}

func (err *DependencyLeakError) Error() string {
	return fmt.Sprintf("constructed %s leaked from its Ensure scope", err.Dependency)
}

func newTypeConversionError(expected reflect.Type, raw any, position int, cause error) error {
	return &TypeConversionError{
		cause:    cause,
		Expected: expected,
		Raw:      raw,
		Position: position,
	}
}

type TypeConversionError struct {
	cause    error
	Expected reflect.Type
	Raw      any
	Position int
}

func (err *TypeConversionError) Error() string {
	return fmt.Sprintf(
		"cannot convert argument %d value %#v to %s: %s",
		err.Position,
		err.Raw,
		err.Expected,
		err.cause,
	)
}

func (err *TypeConversionError) Unwrap() error {
	return err.cause
}
