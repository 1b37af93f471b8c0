// Package clipboard copies exported pages to the desktop clipboard and
// reads pasted images back as page rasters.
package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
)

// WriteImage encodes the provided image as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return WritePNG(buf.Bytes())
}

// ReadImage retrieves PNG image data from the clipboard and decodes it.
func ReadImage() (image.Image, error) {
	data, err := ReadPNG()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard does not contain image data")
	}
	return png.Decode(bytes.NewReader(data))
}

// Sink publishes exported pages to the clipboard. It satisfies
// engine.ExportSink.
type Sink struct {
	// Copied, when set, is called after a successful copy.
	Copied func(size int)
}

// Export writes the PNG bytes to the clipboard.
func (s Sink) Export(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := WritePNG(data); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	if s.Copied != nil {
		s.Copied(len(data))
	}
	return nil
}
