package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrincipal(t *testing.T) {
	checksummed := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}
	for _, addr := range checksummed {
		t.Run(addr, func(t *testing.T) {
			p, err := ParsePrincipal(strings.ToLower(addr))
			require.NoError(t, err)
			assert.Equal(t, Principal(addr), p)

			upper, err := ParsePrincipal("0x" + strings.ToUpper(addr[2:]))
			require.NoError(t, err)
			assert.Equal(t, p, upper)
		})
	}

	t.Run("Opaque identity", func(t *testing.T) {
		p, err := ParsePrincipal("  alice ")
		require.NoError(t, err)
		assert.Equal(t, Principal("alice"), p)
	})

	t.Run("Blank", func(t *testing.T) {
		_, err := ParsePrincipal("   ")
		assert.ErrorIs(t, err, ErrInvalidPrincipal)
	})

	t.Run("Malformed hex address", func(t *testing.T) {
		_, err := ParsePrincipal("0x1234")
		assert.ErrorIs(t, err, ErrInvalidPrincipal)
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "SplitMismatch", KindOf(ErrSplitMismatch))
	assert.Equal(t, "NotParty", KindOf(fmt.Errorf("confirm pickup: %w", ErrNotParty)))
	assert.Equal(t, "", KindOf(nil))
	assert.False(t, IsRejection(assert.AnError))
}
