package document

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/nikhilbhutani/docchat/pkg/textextract"
)

// TextExtractor turns a stored file into plain text. Kinds it does not
// understand produce an empty string, not an error.
type TextExtractor interface {
	Extract(ctx context.Context, name string, data []byte) (string, error)
}

type extractor struct{}

func NewTextExtractor() TextExtractor {
	return &extractor{}
}

func (e *extractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	result, err := textextract.Extract(bytes.NewReader(data), int64(len(data)), filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", name, err)
	}
	return result.Content, nil
}
