package ingestion

import (
	"context"

	"github.com/poiesic/vaultindex/core"
)

// DocumentCollector lists the files of a vault in processing order.
type DocumentCollector interface {
	Collect(vault string, includePDFs bool) ([]string, error)
}

// DocumentParser reads one file into a SourceDocument.
type DocumentParser interface {
	Parse(path string) (*core.SourceDocument, error)
	HasPDFExtractor() bool
}

// TextChunker splits document text into chunks. It never fails; non-empty
// text yields at least one chunk.
type TextChunker interface {
	Chunk(ctx context.Context, text string) []string
}

// ChunkEmbedder embeds one chunk. Dimensions is the vector size of every
// returned embedding.
type ChunkEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// LivenessFunc reports whether the store process is running.
type LivenessFunc func(ctx context.Context) (bool, error)
