package device

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasVariationDetectsConstantData(t *testing.T) {
	constant := make([]byte, 16)
	require.False(t, hasVariation(constant))
}

func TestHasVariationDetectsDifference(t *testing.T) {
	data := make([]byte, 16)
	data[15] = 1
	require.True(t, hasVariation(data))
}

func TestHasVariationEmpty(t *testing.T) {
	require.False(t, hasVariation(nil))
}
