package ai

import "context"

// GroundedGenerator generates text for a prompt using a search-grounded
// backend. The lead search pipeline depends on this interface, not on a
// concrete provider.
type GroundedGenerator interface {
	GenerateGroundedText(ctx context.Context, prompt string) (string, error)
}
