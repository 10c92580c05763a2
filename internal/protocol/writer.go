package protocol

import (
	"encoding/binary"
	"math"
)

// writer fills a caller-provided buffer. Encode methods size buffers
// with Size() first, so writes never run past the end.
type writer struct {
	buf []byte
	off int
}

func (w *writer) putByte(b byte) {
	w.buf[w.off] = b
	w.off++
}

func (w *writer) putUint16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[w.off:], v)
	w.off += 2
}

func (w *writer) putUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *writer) putUint64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:], v)
	w.off += 8
}

func (w *writer) putFloat32(v float32) {
	w.putUint32(math.Float32bits(v))
}

func (w *writer) putBytes(b []byte) {
	w.off += copy(w.buf[w.off:], b)
}

func (w *writer) putCString(s string) {
	w.off += copy(w.buf[w.off:], s)
	w.putByte(0)
}
