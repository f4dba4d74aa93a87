package gguf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedMul(t *testing.T) {
	const max = math.MaxUint64

	t.Run("no overflow", func(t *testing.T) {
		cases := [][2]uint64{
			{0, 0}, {0, 1}, {1, 1}, {1, 2}, {max, 0}, {max, 1}, {max / 2, 2},
		}
		for _, tc := range cases {
			for _, pair := range [][2]uint64{tc, {tc[1], tc[0]}} {
				c, err := checkedMul(pair[0], pair[1])
				require.NoError(t, err)
				assert.Equal(t, pair[0]*pair[1], c)
			}
		}
	})

	t.Run("overflow", func(t *testing.T) {
		cases := [][2]uint64{{max, 2}, {max / 2, 3}, {max, max}}
		for _, tc := range cases {
			_, err := checkedMul(tc[0], tc[1])
			assert.Error(t, err)
		}
	})
}

func TestProductShape(t *testing.T) {
	n, err := productShape([]uint64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), n)

	_, err = productShape(nil)
	assert.Error(t, err)

	_, err = productShape([]uint64{0, 4})
	assert.Error(t, err)
}
