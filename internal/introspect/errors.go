package introspect

import "errors"

var (
	ErrConnectionFailed    = errors.New("failed to connect to database")
	ErrIntrospectionFailed = errors.New("database introspection failed")
)
