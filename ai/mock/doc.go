// Package mock provides test double implementations of ai.Embedder.
//
// The mock serves both embedding roles in tests: the document embedder and
// the sentence encoder used by the chunker. No external service is needed.
//
// # Usage in Tests
//
//	embedder := mock.NewMockEmbedderWithDimensions(8)
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("rate limited")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
// MockEmbedder returns deterministic vectors derived from an FNV hash of the
// text, so equal texts always embed identically.
package mock
