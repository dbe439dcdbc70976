// Package tunnel defines the contract between the polling engine and a
// reverse tunnel that lets the backend's probes reach endpoints on the user's
// private network. The engine only observes liveness; establishing and
// proxying connections is the tunnel implementation's business.
package tunnel

import "context"

// Tunnel is the handle the engine holds while a batch runs.
//
// KeepAlive blocks for the lifetime of the tunnel: it returns nil on a
// graceful close and an error on failure. Either way, once it returns the
// tunnel must be considered down for good.
type Tunnel interface {
	KeepAlive(ctx context.Context) error
}
