package spzfile

import (
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/splatkit/spz/internal/codec"
	"github.com/splatkit/spz/internal/splat"
)

// Write encodes cloud as an SPZ stream compressed with c.
// The compressor is always closed; its error is combined with any write error.
func Write(w io.Writer, cloud *splat.PackedCloud, c codec.Codec) (err error) {
	if cloud.Count() > MaxPoints {
		return formatError(fmt.Sprintf("too many points %d", cloud.Count()))
	}

	cw, err := c.Writer(w)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}
	defer func() {
		if cerr := cw.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("closing compressor: %w", cerr))
		}
	}()

	header, err := NewHeader(cloud).MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, col := range cloud.Columns() {
		if _, err := cw.Write(col); err != nil {
			return fmt.Errorf("writing body: %w", err)
		}
	}
	return nil
}
