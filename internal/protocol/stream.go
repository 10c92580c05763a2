package protocol

import (
	"fmt"
	"io"

	"github.com/udisondev/realmd/internal/constants"
)

// FrameReader reassembles frames from a byte stream. Bytes beyond the
// decoded frame stay buffered for the next call, so frames split across
// reads and frames coalesced into one read both decode in order.
type FrameReader struct {
	r   io.Reader
	buf []byte
	n   int
	err error
}

// NewFrameReader wraps r. buf is the working buffer; it must hold at least
// one maximal frame and is grown if it does not.
func NewFrameReader(r io.Reader, buf []byte) *FrameReader {
	if len(buf) < constants.MaxFrameSize {
		buf = make([]byte, constants.DefaultReadBufSize)
	}
	return &FrameReader{r: r, buf: buf}
}

// Next blocks until one full frame is available.
// Returns ErrMalformedFrame (wrapped) on a bad frame or the read error.
func (fr *FrameReader) Next() (Frame, error) {
	for {
		frame, consumed, err := TryDecodeFrame(fr.buf[:fr.n])
		if err != nil {
			return nil, err
		}
		if frame != nil {
			fr.n = copy(fr.buf, fr.buf[consumed:fr.n])
			return frame, nil
		}

		if fr.err != nil {
			return nil, fr.err
		}
		if fr.n == len(fr.buf) {
			return nil, fmt.Errorf("%w: frame exceeds %d bytes", ErrMalformedFrame, len(fr.buf))
		}

		m, err := fr.r.Read(fr.buf[fr.n:])
		fr.n += m
		if err != nil {
			fr.err = err
		}
	}
}

// Buffered returns the number of bytes read but not yet decoded.
func (fr *FrameReader) Buffered() int {
	return fr.n
}
