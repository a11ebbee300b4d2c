package leb128

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeUint32RoundTrip(t *testing.T) {
	tests := []uint32{0, 1, 127, 128, 255, 300, 1 << 20, 1<<32 - 1}
	for _, v := range tests {
		enc := EncodeUint32(v)
		got, n, err := DecodeUint32(bytes.NewReader(enc))
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, uint64(len(enc)), n)
	}
}

func TestEncodeDecodeInt32RoundTrip(t *testing.T) {
	tests := []int32{0, 1, -1, 63, -64, 64, -65, 1 << 20, -(1 << 20)}
	for _, v := range tests {
		enc := EncodeInt32(v)
		got, n, err := DecodeInt32(bytes.NewReader(enc))
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, uint64(len(enc)), n)
	}
}

func TestDecodeUint32_overlong_is_masked_not_rejected(t *testing.T) {
	// five bytes encoding the value 1, with redundant continuation bits set
	// on all but the last: this is non-canonical but this decoder accepts
	// and masks it rather than treating it as an error, per spec.
	in := []byte{0x81, 0x80, 0x80, 0x80, 0x00}
	got, n, err := DecodeUint32(bytes.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, uint32(1), got)
	require.Equal(t, uint64(5), n)
}

func TestDecodeUint32_truncated(t *testing.T) {
	_, _, err := DecodeUint32(bytes.NewReader([]byte{0x80}))
	require.Error(t, err)
}

func TestDecodeInt33AsInt64(t *testing.T) {
	enc := EncodeInt64(-12345)
	got, _, err := DecodeInt33AsInt64(bytes.NewReader(enc))
	require.NoError(t, err)
	require.Equal(t, int64(-12345), got)
}

func TestDecodeUint64_stopsAt64BitsWithoutError(t *testing.T) {
	// 11 bytes with every continuation bit set: the decoder stops once the
	// 10th byte (64 bits) is consumed rather than looping forever or
	// erroring, and returns whatever value those bits masked to.
	in := bytes.Repeat([]byte{0x80}, 11)
	_, n, err := DecodeUint64(bytes.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, uint64(10), n)
}
