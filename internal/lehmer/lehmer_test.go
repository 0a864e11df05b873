package lehmer

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinimalStandardCheckValue(t *testing.T) {
	x := uint32(1)
	for i := 0; i < 10000; i++ {
		x = Next(x)
	}
	require.EqualValues(t, 1043618065, x)
}

func TestIV16(t *testing.T) {
	require.Equal(t, "f5d38d7f875888fccbe9c900a6a619d6", hex.EncodeToString(NewSource(3).IV16()))
}

func TestZeroSeed(t *testing.T) {
	require.Equal(t, NewSource(1).IV16(), NewSource(0).IV16())
	require.Equal(t, NewSource(1).IV16(), NewSource(Modulus).IV16())
}

func TestTimeSource(t *testing.T) {
	iv := NewTimeSource().IV16()
	require.Len(t, iv, 16)
}
