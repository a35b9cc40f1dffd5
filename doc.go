/*
This package provides small decorator-style dependency injection helpers.
Its purpose is to let application code declare dependencies as plain constructors
and have them supplied as leading arguments to consumer functions,
with fake substitution for tests.

To install diwrap:

	go get -u github.com/ovasylenko/diwrap

How to use:

	apiToken := diwrap.Dependency(func() (string, error) {
		return os.Getenv("API_TOKEN"), nil
	})

	buildHeaders, err := apiToken.Inject(func(token string) http.Header {
		return http.Header{"Authorization": []string{"Bearer " + token}}
	})
	if err != nil {
		// handle error
	}

	headers := buildHeaders.(func() http.Header)()

	// in tests:
	restore := apiToken.FakeValue("test-token")
	defer restore()

Contextual dependencies follow a construct/use/teardown lifecycle:

	dbConn := diwrap.ContextualDependency(func(ctx context.Context) (*sql.DB, diwrap.Cleanup, error) {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, nil, err
		}

		return db, func() { db.Close() }, nil
	})

	countUsers, _ := dbConn.Inject(func(db *sql.DB, table string) (int, error) {
		// query db
		return 0, nil
	})

	err = dbConn.Ensure(ctx, func(ctx context.Context) error {
		n, err := countUsers.(func(context.Context, string) (int, error))(ctx, "users")
		// use n
		return err
	})

Functions:
  - diwrap.Dependency
  - diwrap.ContextualDependency
  - diwrap.ConfigurableDependency
  - diwrap.EnsureValue
  - diwrap.Arg
  - diwrap.Bind
  - diwrap.MustBind
  - diwrap.Pure
  - diwrap.Singleton
  - diwrap.SetDefaultErrorLogger

Constructor types that can be used:
  - func() (T, error) - for Dependency
  - func(context.Context) (T, Cleanup, error) - for ContextualDependency
  - func(C) (T, error) - for ConfigurableDependency
*/
package diwrap
