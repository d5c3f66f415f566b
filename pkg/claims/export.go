package claims

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// Export writes markers as brotli-compressed JSON lines.
func Export(writer io.Writer, markers []Marker) error {
	compressed := brotli.NewWriterLevel(writer, brotli.DefaultCompression)
	encoder := json.NewEncoder(compressed)
	for _, marker := range markers {
		if err := encoder.Encode(marker); err != nil {
			_ = compressed.Close()
			return fmt.Errorf("failed to encode claim marker: %w", err)
		}
	}
	if err := compressed.Close(); err != nil {
		return fmt.Errorf("failed to flush claim export: %w", err)
	}
	return nil
}

// Import reads markers written by Export.
func Import(reader io.Reader) ([]Marker, error) {
	decoder := json.NewDecoder(bufio.NewReader(brotli.NewReader(reader)))
	markers := make([]Marker, 0)
	for {
		var marker Marker
		err := decoder.Decode(&marker)
		if errors.Is(err, io.EOF) {
			return markers, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode claim export: %w", err)
		}
		markers = append(markers, marker)
	}
}
