package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/splatkit/spz/internal/store"
)

// ManifestVersion is the current manifest schema version.
const ManifestVersion = 1

// ManifestFilename is the name of the manifest written next to the output.
const ManifestFilename = "manifest.json"

// Manifest records the outcome of a batch run.
type Manifest struct {
	Version        int          `json:"version"`
	Target         string       `json:"target"`
	Compression    string       `json:"compression"`
	FractionalBits uint8        `json:"fractional_bits"`
	FileCount      int          `json:"file_count"`
	FailedCount    int          `json:"failed_count"`
	PointCount     int64        `json:"point_count"`
	InputBytes     int64        `json:"input_bytes"`
	OutputBytes    int64        `json:"output_bytes"`
	BuiltAt        time.Time    `json:"built_at"`
	Files          []FileResult `json:"files"`
}

// FileResult is the outcome of one conversion.
type FileResult struct {
	Source      string  `json:"source"`
	Dest        string  `json:"dest"`
	Points      int     `json:"points,omitempty"`
	SHDegree    int     `json:"sh_degree,omitempty"`
	InputBytes  int64   `json:"input_bytes,omitempty"`
	OutputBytes int64   `json:"output_bytes,omitempty"`
	Seconds     float64 `json:"seconds,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Ratio returns the total output size as a fraction of the input size.
func (m *Manifest) Ratio() float64 {
	if m.InputBytes == 0 {
		return 0
	}
	return float64(m.OutputBytes) / float64(m.InputBytes)
}

// WriteManifest writes the manifest to dir in st.
func WriteManifest(ctx context.Context, st store.Store, dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := st.Write(ctx, manifestName(dir), data); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest from dir in st.
func ReadManifest(ctx context.Context, st store.Store, dir string) (*Manifest, error) {
	data, err := st.Read(ctx, manifestName(dir))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

func manifestName(dir string) string {
	return store.NormalizePrefix(dir) + ManifestFilename
}
