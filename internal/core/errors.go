package core

import "errors"

// ErrHubStopped is returned by queries issued after Run has returned.
var ErrHubStopped = errors.New("hub stopped")
