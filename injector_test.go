package diwrap_test

import (
	"errors"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ovasylenko/diwrap"
)

var _ = Describe("Injector", func() {
	It("should supply the dependency as the leading argument", func() {
		token := diwrap.Dependency(diwrap.Pure(func() string { return "prod-token" }))

		wrapped, err := token.Inject(func(token, host string) string {
			return host + ": Bearer " + token
		})

		Expect(err).ShouldNot(HaveOccurred())

		buildHeader := wrapped.(func(string) string)

		for i := 0; i < 3; i++ {
			Expect(buildHeader("api")).To(Equal("api: Bearer prod-token"))
		}
	})

	It("should call the constructor on every invocation", func() {
		constructor, calls := countingConstructor()
		counter := diwrap.Dependency(constructor)

		read := counter.MustInject(func(n int) int { return n }).(func() int)

		Expect(read()).To(Equal(1))
		Expect(read()).To(Equal(2))
		Expect(*calls).To(Equal(2))
	})

	It("should construct Singleton dependencies once", func() {
		constructor, calls := countingConstructor()
		counter := diwrap.Dependency(diwrap.Singleton(constructor))

		read := counter.MustInject(func(n int) int { return n }).(func() int)

		for i := 0; i < 4; i++ {
			Expect(read()).To(Equal(1))
		}

		Expect(*calls).To(Equal(1))
	})

	It("should replace the dependency within FakeValue and restore it afterwards", func() {
		config := diwrap.Dependency(diwrap.Pure(func() map[string]string {
			return map[string]string{"env": "production"}
		}))

		getEnv := config.MustInject(func(cfg map[string]string) string {
			return cfg["env"]
		}).(func() string)

		Expect(getEnv()).To(Equal("production"))

		restore := config.FakeValue(map[string]string{"env": "test"})
		Expect(getEnv()).To(Equal("test"))

		restore()
		Expect(getEnv()).To(Equal("production"))
	})

	It("should restore nested fakes in reverse order", func() {
		token := diwrap.Dependency(diwrap.Pure(func() string { return "real" }))
		read := token.MustInject(func(t string) string { return t }).(func() string)

		restoreOuter := token.FakeValue("outer")
		restoreInner := token.FakeValue("inner")

		Expect(read()).To(Equal("inner"))

		restoreInner()
		Expect(read()).To(Equal("outer"))

		restoreOuter()
		Expect(read()).To(Equal("real"))
	})

	It("should swap the constructor within Faker and restore it afterwards", func() {
		number := diwrap.Dependency(diwrap.Pure(func() int { return 7 }))
		fake := number.Faker(diwrap.Pure(func() int { return 42 }))

		read := number.MustInject(func(n int) int { return n }).(func() int)

		Expect(read()).To(Equal(7))

		restore := fake()
		Expect(read()).To(Equal(42))

		restore()
		Expect(read()).To(Equal(7))
	})

	It("should support chained dependencies", func() {
		var values []string

		token := diwrap.Dependency(diwrap.Pure(func() string { return "test_token" }))

		clientConstructor := token.MustInject(func(token string) string {
			values = append(values, token)
			return "test_client"
		}).(func() string)
		client := diwrap.Dependency(diwrap.Pure(clientConstructor))

		useClient := client.MustInject(func(client string) string {
			values = append(values, client)
			return client
		}).(func() string)

		Expect(useClient()).To(Equal("test_client"))
		Expect(values).To(Equal([]string{"test_token", "test_client"}))
	})

	It("should support stacked injectors for multiple dependencies", func() {
		loggerDep := diwrap.Dependency(diwrap.Pure(func() string { return "logger_instance" }))
		connDep := diwrap.Dependency(diwrap.Pure(func() string { return "conn_instance" }))

		inner := connDep.MustInject(func(conn, logger string) string {
			return "using " + conn + " with " + logger
		})
		useServices := loggerDep.MustInject(inner).(func() string)

		Expect(useServices()).To(Equal("using conn_instance with logger_instance"))
	})

	It("should propagate task errors unchanged", func() {
		conn := diwrap.Dependency(diwrap.Pure(func() string { return "db" }))

		failing := conn.MustInject(func(conn string) error {
			return fmt.Errorf("simulated error using %s", conn)
		}).(func() error)

		Expect(failing()).To(MatchError("simulated error using db"))
	})

	It("should return constructor errors through the task's error result", func() {
		boom := errors.New("boom")
		failing := diwrap.Dependency(func() (string, error) { return "", boom })

		wrapped := failing.MustInject(func(s string) (string, error) {
			return s, nil
		}).(func() (string, error))

		_, err := wrapped()

		Expect(err).Should(HaveOccurred())
		Expect(err).Should(BeAssignableToTypeOf(new(diwrap.ConstructorError)))
		Expect(errors.Unwrap(err)).Should(MatchError(boom))
	})

	It("should panic with the constructor error if the task has no error result", func() {
		failing := diwrap.Dependency(func() (string, error) { return "", errors.New("boom") })

		wrapped := failing.MustInject(func(s string) string { return s }).(func() string)

		Expect(func() { wrapped() }).To(Panic())
	})

	It("should recover constructor panics into errors", func() {
		scared := diwrap.Dependency(func() (string, error) { panic("scared") })

		_, err := scared.Resolve()

		Expect(err).Should(HaveOccurred())
		Expect(err).Should(BeAssignableToTypeOf(new(diwrap.ConstructorError)))
	})

	It("should refuse to decorate values that are not functions", func() {
		token := diwrap.Dependency(diwrap.Pure(func() string { return "token" }))

		_, err := token.Inject("just random human made mistake")

		Expect(err).Should(HaveOccurred())
		Expect(err).Should(BeAssignableToTypeOf(new(diwrap.BadTaskError)))
		Expect(errors.Unwrap(err)).Should(MatchError(diwrap.ErrTaskNotAFunction))
	})

	It("should refuse to decorate variadic tasks", func() {
		token := diwrap.Dependency(diwrap.Pure(func() string { return "token" }))

		_, err := token.Inject(func(tokens ...string) {})

		Expect(err).Should(HaveOccurred())
		Expect(err).Should(BeAssignableToTypeOf(new(diwrap.BadTaskError)))
		Expect(errors.Unwrap(err)).Should(MatchError(diwrap.ErrVariadicTask))
	})

	It("should refuse tasks that cannot accept the dependency first", func() {
		token := diwrap.Dependency(diwrap.Pure(func() string { return "token" }))

		_, err := token.Inject(func(n int) {})

		Expect(err).Should(HaveOccurred())
		Expect(err).Should(BeAssignableToTypeOf(new(diwrap.BadTaskError)))
		Expect(errors.Unwrap(err)).Should(BeAssignableToTypeOf(new(diwrap.DependencyTypeError)))

		_, err = token.Inject(func() {})

		Expect(err).Should(HaveOccurred())
		Expect(err).Should(BeAssignableToTypeOf(new(diwrap.BadTaskError)))
	})

	It("should accept tasks taking the dependency through an interface", func() {
		stringer := diwrap.Dependency(func() (fmt.Stringer, error) {
			return testStringer("hello"), nil
		})

		read := stringer.MustInject(func(s fmt.Stringer) string { return s.String() }).(func() string)

		Expect(read()).To(Equal("hello"))
	})

	It("should panic on MustInject with a bad task", func() {
		token := diwrap.Dependency(diwrap.Pure(func() string { return "token" }))

		Expect(func() { token.MustInject(42) }).To(Panic())
	})

	It("should be thread-safe", func() {
		constructor, calls := countingConstructor()
		counter := diwrap.Dependency(constructor)

		read := counter.MustInject(func(n int) int { return n }).(func() int)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			results []int
		)

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				n := read()

				mu.Lock()
				results = append(results, n)
				mu.Unlock()
			}()
		}

		wg.Wait()

		Expect(results).To(HaveLen(10))
		Expect(*calls).To(Equal(10))
	})
})

type testStringer string

func (s testStringer) String() string { return string(s) }
