package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and registries return these
// (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: no entry exists for the key
//   - ErrUnavailable: a backing store could not be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
