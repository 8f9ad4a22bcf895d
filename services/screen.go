package services

import (
	"errors"
	"sync/atomic"
)

// ErrStaleScreen is returned when a response arrives for a screen the user
// has already navigated away from. Callers drop the result instead of
// applying it.
var ErrStaleScreen = errors.New("screen was abandoned before the response arrived")

// ScreenEpoch tracks which screen generation is current. Each navigation
// calls Enter and passes the returned generation into the fetches made on
// behalf of that screen; when a fetch completes under a newer generation its
// result is discarded.
type ScreenEpoch struct {
	n atomic.Uint64
}

// Enter marks a new screen as current and returns its generation.
func (e *ScreenEpoch) Enter() uint64 {
	return e.n.Add(1)
}

// Current returns the generation of the screen currently mounted.
func (e *ScreenEpoch) Current() uint64 {
	return e.n.Load()
}

// Guard returns ErrStaleScreen when gen is no longer the current generation.
func (e *ScreenEpoch) Guard(gen uint64) error {
	if e.n.Load() != gen {
		return ErrStaleScreen
	}
	return nil
}
