// Package leb128 decodes and encodes the variable-length integer formats
// used throughout the Wasm binary format: unsigned LEB128 and signed LEB128.
//
// Unlike a validating decoder, the Decode* functions mask off bits beyond
// the target width instead of rejecting overlong or overflowing encodings.
// This system only needs to recover a number from a byte stream, not certify
// that the producer encoded it canonically.
package leb128

import (
	"fmt"
	"io"
)

const (
	maxVarintLen32 = 5
	maxVarintLen64 = 10
)

// DecodeUint32 reads an unsigned LEB128 value from r, returning the decoded
// value, the number of bytes consumed, and an error if r runs out before a
// terminating byte (high bit clear) is seen.
func DecodeUint32(r io.ByteReader) (value uint32, n uint64, err error) {
	v, n, err := decodeUint64(r, maxVarintLen32)
	return uint32(v), n, err
}

// DecodeUint64 reads an unsigned LEB128 value from r.
func DecodeUint64(r io.ByteReader) (value uint64, n uint64, err error) {
	return decodeUint64(r, maxVarintLen64)
}

func decodeUint64(r io.ByteReader, limit int) (value uint64, n uint64, err error) {
	var shift uint
	for i := 0; i < limit; i++ {
		c, err := r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("unexpected EOF decoding uleb128 at byte %d: %w", i, err)
		}
		n++
		value |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return value, n, nil
		}
		shift += 7
	}
	// Group limit reached with the continuation bit still set: stop here
	// rather than reading forever. Not an error, the same as any other
	// overlong encoding.
	return value, n, nil
}

// DecodeInt32 reads a signed LEB128 value from r and truncates the result to
// 32 bits.
func DecodeInt32(r io.ByteReader) (value int32, n uint64, err error) {
	v, n, err := decodeInt64(r, maxVarintLen32, 32)
	return int32(v), n, err
}

// DecodeInt33AsInt64 reads a signed 33-bit LEB128 value, the width Wasm uses
// for block-type immediates and memory offsets that must hold a sign bit
// beyond a plain i32.
func DecodeInt33AsInt64(r io.ByteReader) (value int64, n uint64, err error) {
	return decodeInt64(r, 5, 33)
}

// DecodeInt64 reads a signed LEB128 value from r.
func DecodeInt64(r io.ByteReader) (value int64, n uint64, err error) {
	return decodeInt64(r, maxVarintLen64, 64)
}

func decodeInt64(r io.ByteReader, limit int, width uint) (value int64, n uint64, err error) {
	var result int64
	var shift uint
	var c byte
	i := 0
	for ; i < limit; i++ {
		c, err = r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("unexpected EOF decoding sleb128 at byte %d: %w", i, err)
		}
		n++
		result |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			break
		}
	}
	// i == limit with the continuation bit still set falls through here
	// rather than erroring: the group limit, not a terminating byte, ended
	// the loop, same treatment as any other overlong encoding.
	if shift < width && c&0x40 != 0 {
		result |= -1 << shift
	}
	return result, n, nil
}

// EncodeUint32 returns the unsigned LEB128 encoding of v.
func EncodeUint32(v uint32) []byte {
	return EncodeUint64(uint64(v))
}

// EncodeUint64 returns the unsigned LEB128 encoding of v.
func EncodeUint64(v uint64) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		out = append(out, c)
		if v == 0 {
			return out
		}
	}
}

// EncodeInt32 returns the signed LEB128 encoding of v.
func EncodeInt32(v int32) []byte {
	return EncodeInt64(int64(v))
}

// EncodeInt64 returns the signed LEB128 encoding of v.
func EncodeInt64(v int64) []byte {
	var out []byte
	more := true
	for more {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			more = false
		} else {
			c |= 0x80
		}
		out = append(out, c)
	}
	return out
}
