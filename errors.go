package main

import "fmt"

// ParseError reports a malformed scenario file. It is fatal at load time;
// no partial recovery is attempted.
type ParseError struct {
	File  string // scenario file path
	Field string // offending field, e.g. "tests[2].command"
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	}
	return fmt.Sprintf("%s: field %s: %s", e.File, e.Field, e.Msg)
}

// AuthError means the tester account could not be authorized. Fatal before
// any run starts.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "telegram authorization failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError is a transport failure mid-run. It aborts the current
// scenario but never corrupts step results already recorded.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("telegram %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
