package scanner

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// Frame is one RGB video frame from a camera stream.
type Frame struct {
	Width  int
	Height int
	// Data is packed RGB, 3 bytes per pixel.
	Data []byte
}

// Image wraps the raw RGB data in an image.Image for the decoding engine.
func (f Frame) Image() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i+2 < len(f.Data) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Data[i]
		img.Pix[j+1] = f.Data[i+1]
		img.Pix[j+2] = f.Data[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// FrameSource produces live frames from a camera device. Start acquires
// exclusive use of the hardware stream; Stop releases it and is idempotent.
type FrameSource interface {
	Start(ctx context.Context, device CameraDevice) (<-chan Frame, error)
	Stop() error
}

// VideoSink receives a copy of each frame considered by the decoder, for
// preview purposes. May be nil.
type VideoSink interface {
	Consume(Frame)
}

// Decoder blocks until a barcode is read from a device's frame stream.
type Decoder interface {
	Decode(ctx context.Context, device CameraDevice, sink VideoSink) (string, error)
	Stop() error
}

// ZXingDecoder reads retail symbologies (EAN-8/13, UPC) from camera frames
// with the gozxing engine.
type ZXingDecoder struct {
	source FrameSource
	reader gozxing.Reader

	mu      sync.Mutex
	started bool
}

func NewZXingDecoder(source FrameSource) *ZXingDecoder {
	return &ZXingDecoder{
		source: source,
		reader: oned.NewMultiFormatUPCEANReader(nil),
	}
}

// Decode consumes frames until one of them yields a symbol, the context is
// cancelled, or the stream ends. The camera stream is released on every
// return path.
func (d *ZXingDecoder) Decode(ctx context.Context, device CameraDevice, sink VideoSink) (string, error) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return "", newScanError(KindOther, fmt.Errorf("decode already in progress"))
	}
	d.started = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.started = false
		d.mu.Unlock()
		_ = d.source.Stop()
	}()

	frames, err := d.source.Start(ctx, device)
	if err != nil {
		return "", err
	}

	for {
		select {
		case <-ctx.Done():
			return "", newScanError(KindStreamEnded, ctx.Err())
		case frame, ok := <-frames:
			if !ok {
				return "", newScanError(KindStreamEnded, fmt.Errorf("camera stream closed"))
			}
			if sink != nil {
				sink.Consume(frame)
			}
			if text, ok := d.tryDecode(frame); ok {
				return text, nil
			}
		}
	}
}

// Stop releases the underlying stream. Safe to call with no scan in progress.
func (d *ZXingDecoder) Stop() error {
	return d.source.Stop()
}

func (d *ZXingDecoder) tryDecode(frame Frame) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(frame.Image())
	if err != nil {
		return "", false
	}
	result, err := d.reader.Decode(bmp, nil)
	if err != nil {
		// No symbol in this frame; keep consuming.
		return "", false
	}
	return result.GetText(), true
}
