package transform

import "github.com/docdailey/quantum-entropy-api/internal/qrngerr"

// ByteWidth returns the minimum number of bytes whose raw big-endian value
// range covers [0, rangeVal), i.e. ceil(log256(rangeVal)) but at least 1.
// A rangeVal of 0 stands for the wrapped full 2^64 range and needs 8 bytes.
func ByteWidth(rangeVal uint64) int {
	if rangeVal == 0 {
		return 8
	}
	maxVal := rangeVal - 1
	for w := 1; w < 8; w++ {
		limit := uint64(1) << uint(8*w)
		if maxVal < limit {
			return w
		}
	}
	return 8
}

// RawBytesNeeded returns the number of raw entropy bytes the dispatcher
// should draw to produce count uniform integers over a range requiring w
// bytes per candidate. The 2x headroom absorbs the candidates rejection
// sampling throws away, keeping an InsufficientEntropy failure rare.
func RawBytesNeeded(count, w int) int {
	return 2 * count * w
}

// UniformIntegers draws count integers uniformly from [min, max] (inclusive)
// out of raw via rejection sampling. It fails with InsufficientEntropy if
// raw is exhausted before count integers are produced.
func UniformIntegers(raw []byte, min, max int64, count int) ([]int64, error) {
	rangeVal := uint64(max-min) + 1
	w := ByteWidth(rangeVal)

	// rangeVal wraps to 0 when [min, max] spans the full int64 domain
	// (e.g. MinInt64..MaxInt64): there are 2^64 distinct values, one more
	// than uint64 can count. In that case every candidate is in range, so
	// there is nothing to reject and no modulus to take.
	fullRange := rangeVal == 0
	var limit uint64
	if !fullRange {
		limit = ^uint64(0) - (^uint64(0) % rangeVal)
	}

	out := make([]int64, 0, count)
	offset := 0
	for len(out) < count && offset+w <= len(raw) {
		var v uint64
		for i := 0; i < w; i++ {
			v = (v << 8) | uint64(raw[offset+i])
		}
		offset += w

		if fullRange {
			out = append(out, min+int64(v))
			continue
		}
		if v < limit {
			out = append(out, min+int64(v%rangeVal))
		}
	}

	if len(out) < count {
		return nil, qrngerr.New(qrngerr.InsufficientEntropy, "Insufficient entropy for requested integers")
	}

	return out, nil
}
