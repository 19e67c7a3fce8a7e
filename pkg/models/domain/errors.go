package domain

import "fmt"

// InvalidInputError marks a request that is missing or malformed before any
// network I/O has happened.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// UpstreamError carries a non-success response from an external API.
type UpstreamError struct {
	Surface string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Surface, e.Status, e.Body)
}

// NotConfiguredError signals that a server-side secret required by the
// operation is absent.
type NotConfiguredError struct {
	What string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s is not configured", e.What)
}

// PreconditionError signals a business-rule violation, e.g. a fix requested
// for an entity that lacks a required attribute.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// ConnectionError wraps a failure to establish a data-store connection.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("data store connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
