package groupcache

import "errors"

// ErrMissingPeerResponseValue is returned when a peer's response to a Get
// request lacked a value, which a well-behaved peer never does.
var ErrMissingPeerResponseValue = errors.New("groupcache: peer response missing value")

// AllocationError wraps a memory-allocation failure encountered while
// constructing or populating a cache entry. Operations that fail this way
// release any partially constructed value before returning.
type AllocationError struct {
	Err error
}

func (e *AllocationError) Error() string { return "groupcache: allocation failed: " + e.Err.Error() }
func (e *AllocationError) Unwrap() error { return e.Err }

// LoaderError wraps an error returned by the local Getter.
type LoaderError struct {
	Key string
	Err error
}

func (e *LoaderError) Error() string {
	return "groupcache: loader error for key " + e.Key + ": " + e.Err.Error()
}
func (e *LoaderError) Unwrap() error { return e.Err }

// PeerTransportError wraps a transport-level failure from a peer Get.
// These are never surfaced directly from Group.Get: the orchestrator logs
// and counts them, then falls back to the local loader.
type PeerTransportError struct {
	Peer string
	Err  error
}

func (e *PeerTransportError) Error() string {
	return "groupcache: peer " + e.Peer + " transport error: " + e.Err.Error()
}
func (e *PeerTransportError) Unwrap() error { return e.Err }
