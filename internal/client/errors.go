package client

import "errors"

var (
	// ErrNoConnection is returned by Send when no connection is open.
	ErrNoConnection = errors.New("no open connection to the vBox")

	// ErrConnectionExists is returned by Connect when a connection is
	// already established.
	ErrConnectionExists = errors.New("connection already established")

	// ErrClientClosed is returned after Disconnect; a closed client never
	// reconnects.
	ErrClientClosed = errors.New("client is closed")

	// ErrTimeout is returned when a request's correlated response does not
	// arrive within the request timeout.
	ErrTimeout = errors.New("timed out waiting for response")

	// ErrConnectionLost is delivered to every in-flight request when the
	// connection drops.
	ErrConnectionLost = errors.New("connection to the vBox was lost")
)
