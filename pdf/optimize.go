package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Optimize compresses a serialized PDF and drops redundant objects using pdfcpu
func Optimize(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &buf, newConfiguration()); err != nil {
		return nil, fmt.Errorf("pdfcpu optimize failed: %w", err)
	}
	return buf.Bytes(), nil
}
