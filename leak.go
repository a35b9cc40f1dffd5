package diwrap

import "reflect"

// maxLeakDepth bounds the structural search for escaped dependencies.
const maxLeakDepth = 5

// containsValue reports whether needle occurs within haystack, searching
// nested pointers, interfaces, slices, arrays, maps and struct fields up to
// maxLeakDepth levels deep.
func containsValue(needle, haystack any) bool {
	return containsReflected(reflect.ValueOf(needle), reflect.ValueOf(haystack), 1)
}

func containsReflected(needle, haystack reflect.Value, depth int) bool {
	if leakEqual(needle, haystack) {
		return true
	}

	if !haystack.IsValid() {
		return false
	}

	switch haystack.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Interface:
		// unwrapping an interface is not a structural level
		if haystack.IsNil() {
			// untyped nil needle matches a nil interface slot
			return !needle.IsValid()
		}

		return containsReflected(needle, haystack.Elem(), depth)
	}

	if depth == maxLeakDepth {
		return false
	}

	depth++

	switch haystack.Kind() {
	case reflect.Pointer:
		if haystack.IsNil() {
			return false
		}

		return containsReflected(needle, haystack.Elem(), depth)
	case reflect.Slice, reflect.Array:
		for i := 0; i < haystack.Len(); i++ {
			if containsReflected(needle, haystack.Index(i), depth) {
				return true
			}
		}
	case reflect.Map:
		iter := haystack.MapRange()
		for iter.Next() {
			if containsReflected(needle, iter.Key(), depth) ||
				containsReflected(needle, iter.Value(), depth) {
				return true
			}
		}
	case reflect.Struct:
		for i := 0; i < haystack.NumField(); i++ {
			if containsReflected(needle, haystack.Field(i), depth) {
				return true
			}
		}
	}

	return false
}

// leakEqual compares two nodes of the search.
// Unexported struct fields cannot be interfaced, so basic kinds are compared
// directly and anything else is left to the structural descent.
func leakEqual(needle, haystack reflect.Value) bool {
	if !needle.IsValid() || !haystack.IsValid() {
		return false
	}

	if needle.Type() != haystack.Type() {
		return false
	}

	if needle.CanInterface() && haystack.CanInterface() {
		return reflect.DeepEqual(needle.Interface(), haystack.Interface())
	}

	switch haystack.Kind() {
	case reflect.Bool:
		return needle.Bool() == haystack.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return needle.Int() == haystack.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return needle.Uint() == haystack.Uint()
	case reflect.Float32, reflect.Float64:
		return needle.Float() == haystack.Float()
	case reflect.String:
		return needle.String() == haystack.String()
	case reflect.Pointer:
		return needle.Pointer() == haystack.Pointer()
	}

	return false
}
