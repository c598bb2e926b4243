package engine

import (
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidSettings is returned for settings outside their allowed bounds.
var ErrInvalidSettings = errors.New("invalid game settings")

// Settings configures one session. A running session never observes a change.
type Settings struct {
	TotalRounds     int
	FalseTargetRate float64
	MinWait         time.Duration
	MaxWait         time.Duration
	TargetVisible   time.Duration
	Countdown       time.Duration
	UserID          string
}

// DefaultSettings returns the standard waiting-room configuration.
func DefaultSettings() Settings {
	return Settings{
		TotalRounds:     10,
		FalseTargetRate: 0.2,
		MinWait:         800 * time.Millisecond,
		MaxWait:         2500 * time.Millisecond,
		TargetVisible:   900 * time.Millisecond,
		Countdown:       3 * time.Second,
		UserID:          "anonymous",
	}
}

// Validate checks every bound and names the first one violated.
func (s Settings) Validate() error {
	switch {
	case s.TotalRounds <= 0:
		return errors.Wrapf(ErrInvalidSettings, "total rounds must be positive, got %d", s.TotalRounds)
	case s.FalseTargetRate < 0 || s.FalseTargetRate > 1:
		return errors.Wrapf(ErrInvalidSettings, "false target rate must be within [0,1], got %v", s.FalseTargetRate)
	case s.MinWait < 0:
		return errors.Wrapf(ErrInvalidSettings, "min wait must not be negative, got %s", s.MinWait)
	case s.MinWait%time.Millisecond != 0 || s.MaxWait%time.Millisecond != 0:
		return errors.Wrapf(ErrInvalidSettings, "waits must be whole milliseconds, got %s and %s", s.MinWait, s.MaxWait)
	case s.MaxWait < s.MinWait:
		return errors.Wrapf(ErrInvalidSettings, "max wait %s is below min wait %s", s.MaxWait, s.MinWait)
	case s.TargetVisible <= 0:
		return errors.Wrapf(ErrInvalidSettings, "target visible window must be positive, got %s", s.TargetVisible)
	case s.Countdown < 0:
		return errors.Wrapf(ErrInvalidSettings, "countdown must not be negative, got %s", s.Countdown)
	}
	return nil
}
