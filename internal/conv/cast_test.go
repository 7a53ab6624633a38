package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	v, err := IntToUint32(42)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)

	_, err = IntToUint32(-1)
	assert.Error(t, err)

	_, err = IntToUint32(math.MaxUint32 + 1)
	assert.Error(t, err)
}

func TestParseIndex(t *testing.T) {
	v, err := ParseIndex(7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = ParseIndex(-3)
	assert.Error(t, err)
}
