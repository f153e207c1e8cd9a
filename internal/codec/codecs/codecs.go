// Package codecs looks up compression codecs by name.
package codecs

import (
	"fmt"
	"strings"

	"github.com/splatkit/spz/internal/codec"
	"github.com/splatkit/spz/internal/codec/gzipcodec"
	"github.com/splatkit/spz/internal/codec/noopcodec"
	"github.com/splatkit/spz/internal/codec/zstdcodec"
)

// Names lists the known codec names.
var Names = []string{"gzip", "zstd", "none"}

// ByName returns a new codec for name.
func ByName(name string) (codec.Codec, error) {
	switch strings.ToLower(name) {
	case "gzip", "gz":
		return gzipcodec.New(), nil
	case "zstd", "zst":
		return zstdcodec.New(), nil
	case "none", "":
		return noopcodec.New(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q (want one of %s)", name, strings.Join(Names, ", "))
	}
}
