// Package reader provides the single byte-cursor abstraction every decoding
// component in this module reads through: fixed-width reads, Wasm's LEB128
// varints, length-prefixed vectors, and a raw-capture side channel for
// sections (like function bodies) that need to keep their original bytes
// around alongside whatever structure is parsed out of them.
package reader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pawnlord/wyrmgo/internal/leb128"
)

// Reader is a forward-only cursor over an in-memory byte slice. It is not
// safe for concurrent use; callers needing concurrent decodes should give
// each goroutine its own Reader over the same backing slice.
type Reader struct {
	buf []byte
	pos int
}

// New wraps buf for sequential decoding starting at offset 0.
func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current byte offset into the original buffer.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// ReadByte implements io.ByteReader, the interface internal/leb128 reads
// through.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, io.EOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// ReadFixed reads exactly n bytes and returns them as a new slice.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	if r.Len() < n {
		return nil, fmt.Errorf("unexpected EOF: need %d bytes, have %d", n, r.Len())
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// ReadULEB32 reads an unsigned LEB128 value truncated to 32 bits.
func (r *Reader) ReadULEB32() (uint32, error) {
	v, _, err := leb128.DecodeUint32(r)
	return v, err
}

// ReadULEB64 reads an unsigned LEB128 value.
func (r *Reader) ReadULEB64() (uint64, error) {
	v, _, err := leb128.DecodeUint64(r)
	return v, err
}

// ReadSLEB32 reads a signed LEB128 value truncated to 32 bits.
func (r *Reader) ReadSLEB32() (int32, error) {
	v, _, err := leb128.DecodeInt32(r)
	return v, err
}

// ReadSLEB33AsInt64 reads a signed 33-bit LEB128 value (block types, memory
// offsets).
func (r *Reader) ReadSLEB33AsInt64() (int64, error) {
	v, _, err := leb128.DecodeInt33AsInt64(r)
	return v, err
}

// ReadSLEB64 reads a signed LEB128 value.
func (r *Reader) ReadSLEB64() (int64, error) {
	v, _, err := leb128.DecodeInt64(r)
	return v, err
}

// ReadName reads a Wasm "name": a ULEB128 byte length followed by that many
// UTF-8 bytes.
func (r *Reader) ReadName() (string, error) {
	n, err := r.ReadULEB32()
	if err != nil {
		return "", fmt.Errorf("read name length: %w", err)
	}
	b, err := r.ReadFixed(int(n))
	if err != nil {
		return "", fmt.Errorf("read name bytes: %w", err)
	}
	return string(b), nil
}

// ReadVector reads a ULEB128 element count, then invokes elem once per
// element, collecting results. It is the shape of every Wasm section body:
// a count followed by that many homogeneous entries.
func ReadVector[T any](r *Reader, elem func(*Reader) (T, error)) ([]T, error) {
	n, err := r.ReadULEB32()
	if err != nil {
		return nil, fmt.Errorf("read vector count: %w", err)
	}
	out := make([]T, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := elem(r)
		if err != nil {
			return nil, fmt.Errorf("read vector element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// BeginCapture marks the current position as the start of a raw byte range
// to be recovered later with EndCapture. Used by the module decoder to keep
// a function body's original bytes next to its decoded expression, so the
// opcode stream can later be replayed through the Earley parser.
func (r *Reader) BeginCapture() int {
	return r.pos
}

// EndCapture returns the bytes read since start (the value returned by a
// prior BeginCapture).
func (r *Reader) EndCapture(start int) []byte {
	out := make([]byte, r.pos-start)
	copy(out, r.buf[start:r.pos])
	return out
}

// Sub returns a new Reader over the next n bytes, advancing r past them.
// Used to decode a section body under its own length limit without letting
// a malformed inner read run past the section boundary.
func (r *Reader) Sub(n int) (*Reader, error) {
	b, err := r.ReadFixed(n)
	if err != nil {
		return nil, err
	}
	return New(b), nil
}

// AsBytesReader exposes the remaining unread bytes as a bytes.Reader, for
// call sites that want to walk a fixed window with bytes.Reader's own API
// rather than ours. It does not advance r.
func (r *Reader) AsBytesReader() *bytes.Reader {
	return bytes.NewReader(r.buf[r.pos:])
}
