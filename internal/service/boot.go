// Package service contains the application services that sit between the
// CLI screens and the backend ports.
package service

import (
	"context"
	"fmt"
)

// Hydrator is the startup dependency every screen waits on.
type Hydrator interface {
	Hydrate(ctx context.Context) error
}

// Boot waits for the session cache to hydrate. It must complete before any
// screen issues a request, otherwise the first request would go out without
// the stored token.
func Boot(ctx context.Context, h Hydrator) error {
	if err := h.Hydrate(ctx); err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}
	return nil
}
