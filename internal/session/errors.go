package session

import (
	"context"
	"errors"
	"net"
	"syscall"
)

var (
	// ErrInvalidArgument indicates malformed or out-of-range caller input.
	// Rejected before any store access; never retried.
	ErrInvalidArgument = errors.New("session.invalid_argument")

	// ErrNotFound indicates no matching session. Safe to show to callers.
	ErrNotFound = errors.New("session.not_found")

	// ErrExpired indicates the session exists but is past its validity
	// window. Distinct from ErrNotFound so the caller can prompt for
	// renewal instead of re-creation.
	ErrExpired = errors.New("session.expired")

	// ErrUnavailable indicates the backing store is unreachable or
	// misconfigured. Safe to retry.
	ErrUnavailable = errors.New("session.store_unavailable")

	// ErrInternal indicates an unexpected store error. Detail is logged in
	// full server-side and redacted from callers outside development.
	ErrInternal = errors.New("session.internal")
)

// isTaxonomy reports whether err is already one of the taxonomy sentinels
// and needs no further classification.
func isTaxonomy(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrInternal)
}

// isUnavailable detects connectivity-shaped failures that are safe to retry.
func isUnavailable(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED)
}
