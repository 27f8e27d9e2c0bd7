package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJenisCode(t *testing.T) {
	code, ok := JenisCode("Informasi Denda")
	assert.True(t, ok)
	assert.Equal(t, 5, code)

	_, ok = JenisCode("Tidak Ada")
	assert.False(t, ok)
}

func TestJenisLabelsCoverDetails(t *testing.T) {
	// Every detail bucket belongs to a known complaint type.
	for code := range DetailPengaduan {
		_, ok := JenisPengaduan[code]
		assert.True(t, ok, "detail options for unknown code %d", code)
	}
	assert.Len(t, JenisPengaduan, 10)
}

func TestColors_CyclesPalette(t *testing.T) {
	got := Colors(ChartPalette, 12)
	assert.Len(t, got, 12)
	assert.Equal(t, ChartPalette[0], got[0])
	assert.Equal(t, ChartPalette[0], got[10])
	assert.Equal(t, ChartPalette[1], got[11])

	assert.Empty(t, Colors(KanalPalette, 0))
}
