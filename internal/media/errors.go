package media

import "errors"

var (
	// ErrProberUnavailable indicates the duration prober is not configured.
	ErrProberUnavailable = errors.New("media prober unavailable")

	// ErrJanitorClosed is returned when enqueueing after Shutdown.
	ErrJanitorClosed = errors.New("media janitor closed")
)
