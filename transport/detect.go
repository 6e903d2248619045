package transport

import (
	"errors"
	"fmt"
)

// ErrNoBackend is returned when no requested backend could be constructed.
var ErrNoBackend = errors.New("no transport backend available")

// New constructs the backend named by kind.
func New(kind Kind, cfg Config) (Transport, error) {
	switch kind {
	case KindClient:
		return NewHTTP(cfg)
	case KindNative:
		return NewNative(cfg)
	case KindRanged:
		return NewRanged(cfg)
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}

// Detect returns the first backend in kinds, or [Preference] when kinds is
// empty, that constructs successfully. Failures are logged and skipped.
func Detect(cfg Config, kinds ...Kind) (Transport, error) {
	if len(kinds) == 0 {
		kinds = Preference
	}

	var tried []error
	for _, kind := range kinds {
		t, err := New(kind, cfg)
		if err != nil {
			cfg.logger().Debug("transport unavailable", "transport", kind, "error", err)
			tried = append(tried, fmt.Errorf("%s: %w", kind, err))
			continue
		}

		cfg.logger().Debug("transport selected", "transport", t.Name(), "cheap_probe", t.CheapProbe())
		return t, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(tried...))
}
