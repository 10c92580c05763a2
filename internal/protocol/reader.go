package protocol

import (
	"encoding/binary"
	"fmt"
)

// Reader reads little-endian fields from a frame body.
type Reader struct {
	data []byte
	pos  int
}

// NewReader создаёт новый Reader для чтения тела фрейма.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadByte читает 1 байт.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("ReadByte: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint16 читает uint16 (2 байта, LE).
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("ReadUint16: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	val := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return val, nil
}

// ReadUint32 читает uint32 (4 байта, LE).
func (r *Reader) ReadUint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("ReadUint32: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	val := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return val, nil
}

// ReadInto копирует len(dst) байт в dst. Удобно для fixed-size массивов.
func (r *Reader) ReadInto(dst []byte) error {
	if r.pos+len(dst) > len(r.data) {
		return fmt.Errorf("ReadInto: not enough data (pos=%d, need=%d, len=%d)", r.pos, len(dst), len(r.data))
	}
	copy(dst, r.data[r.pos:])
	r.pos += len(dst)
	return nil
}

// ReadString читает n байт как строку (без терминатора).
func (r *Reader) ReadString(n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("ReadString: negative count %d", n)
	}
	if r.pos+n > len(r.data) {
		return "", fmt.Errorf("ReadString: not enough data (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	s := string(r.data[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}

// ReadCString читает null-terminated строку.
func (r *Reader) ReadCString() (string, error) {
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			s := string(r.data[r.pos:i])
			r.pos = i + 1
			return s, nil
		}
	}
	return "", fmt.Errorf("ReadCString: unterminated string (pos=%d, len=%d)", r.pos, len(r.data))
}

// Remaining возвращает количество непрочитанных байт.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Position возвращает текущую позицию чтения.
func (r *Reader) Position() int {
	return r.pos
}
