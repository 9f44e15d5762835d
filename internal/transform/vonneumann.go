// Package transform implements the request-path byte transformations: Von
// Neumann debiasing and uniform-integer generation via rejection sampling.
package transform

import "github.com/docdailey/quantum-entropy-api/internal/qrngerr"

// VonNeumann applies the Von Neumann bias-correction extractor to input.
// Each byte is split into four bit pairs, scanned from the most significant
// pair down: (1,0) emits a 1 bit, (0,1) emits a 0 bit, and (0,0)/(1,1) are
// discarded. Emitted bits are packed LSB-first into output bytes. Output
// length is non-deterministic and upper-bounded by len(input)/2.
func VonNeumann(input []byte) []byte {
	out := make([]byte, 0, len(input)/4)
	var outByte byte
	var outBits uint

	for _, b := range input {
		for i := 7; i > 0; i -= 2 {
			hi := (b >> i) & 1
			lo := (b >> (i - 1)) & 1

			switch {
			case hi == 1 && lo == 0:
				outByte |= 1 << outBits
				outBits++
			case hi == 0 && lo == 1:
				outBits++
			default:
				continue // (0,0) or (1,1): discard
			}

			if outBits == 8 {
				out = append(out, outByte)
				outByte = 0
				outBits = 0
			}
		}
	}

	return out
}

// None returns input unchanged; it exists so the dispatcher can apply a
// correction function uniformly regardless of the requested method.
func None(input []byte) []byte {
	return input
}

// ApplyCorrection applies the named correction ("none" or "von_neumann") and
// verifies the result covers at least wantLen bytes. A debiased stream
// shorter than requested fails the request rather than being padded or
// silently truncated, since padding would mix non-random bytes into the
// output.
func ApplyCorrection(raw []byte, correction string, wantLen int) ([]byte, error) {
	switch correction {
	case "", "none":
		return None(raw), nil
	case "von_neumann":
		corrected := VonNeumann(raw)
		if len(corrected) < wantLen {
			return nil, qrngerr.New(qrngerr.InsufficientEntropy,
				"Insufficient entropy after von_neumann correction, try larger count")
		}
		return corrected, nil
	default:
		return nil, qrngerr.New(qrngerr.InvalidParameter, "invalid correction method")
	}
}
