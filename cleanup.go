package diwrap

import "fmt"

// Cleanup tears down a constructed dependency.
type Cleanup func()

// CallWithRecovery calls the cleanup and recovers from any panic it raises.
// Recovered panics are logged and never propagated to the Ensure caller.
func (fn Cleanup) CallWithRecovery() {
	defer func() {
		if rp := recover(); rp != nil {
			logger().Error(
				"recovered from panic inside cleanup",
				"error", fmt.Errorf("%v", rp),
			)
		}
	}()

	fn()
}
