// Package interfaces defines service contracts for Simfolio
package interfaces

import "context"

// AdviceClient generates narrative text from a prompt. The advice generator
// is an opaque external function; retry policy belongs to the caller.
type AdviceClient interface {
	// GenerateContent generates text from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// Close releases client resources
	Close() error
}
