package transform

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVonNeumannAlternatingBitsYieldsAllOnes(t *testing.T) {
	input := bytes.Repeat([]byte{0xAA}, 10000)
	out := VonNeumann(input)

	require.Len(t, out, 5000)
	for _, b := range out {
		require.Equal(t, byte(0xFF), b)
	}
}

func TestVonNeumannDiscardsConstantBits(t *testing.T) {
	input := bytes.Repeat([]byte{0x00}, 1000)
	out := VonNeumann(input)
	require.Empty(t, out)

	input = bytes.Repeat([]byte{0xFF}, 1000)
	out = VonNeumann(input)
	require.Empty(t, out)
}

func TestVonNeumannReapplyLengthNeverGrows(t *testing.T) {
	input := []byte{0xAA, 0x12, 0x53, 0x00, 0xFF, 0x3C}
	once := VonNeumann(input)
	twice := VonNeumann(once)
	require.LessOrEqual(t, len(twice), len(once))
}

func TestApplyCorrectionInsufficientEntropy(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAA}, 4) // yields 2 bytes after debiasing
	_, err := ApplyCorrection(raw, "von_neumann", 32)
	require.Error(t, err)
}

func TestApplyCorrectionInvalidMethod(t *testing.T) {
	_, err := ApplyCorrection([]byte{1, 2, 3}, "bogus", 1)
	require.Error(t, err)
}

func TestByteWidthBoundaries(t *testing.T) {
	require.Equal(t, 1, ByteWidth(1))
	require.Equal(t, 1, ByteWidth(256))
	require.Equal(t, 2, ByteWidth(257))
	require.Equal(t, 2, ByteWidth(65536))
	require.Equal(t, 3, ByteWidth(65537))
	require.Equal(t, 8, ByteWidth(1<<63))
}

func TestUniformIntegersStayInRange(t *testing.T) {
	raw := make([]byte, RawBytesNeeded(1000, ByteWidth(6)))
	for i := range raw {
		raw[i] = byte((i*37 + 11) % 256)
	}

	out, err := UniformIntegers(raw, 1, 6, 1000)
	require.NoError(t, err)
	require.Len(t, out, 1000)
	for _, v := range out {
		require.GreaterOrEqual(t, v, int64(1))
		require.LessOrEqual(t, v, int64(6))
	}
}

func TestUniformIntegersInsufficientEntropy(t *testing.T) {
	raw := make([]byte, 1) // far too little for 1000 integers
	_, err := UniformIntegers(raw, 1, 6, 1000)
	require.Error(t, err)
}

func TestUniformIntegersExactPowerOfTwoRangeIsNoOpRejection(t *testing.T) {
	// range=256 divides 2^64 exactly, so every byte value is accepted.
	raw := make([]byte, 256)
	for i := range raw {
		raw[i] = byte(i)
	}
	out, err := UniformIntegers(raw, 0, 255, 256)
	require.NoError(t, err)
	require.Len(t, out, 256)
}
