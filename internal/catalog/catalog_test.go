package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineLookup(t *testing.T) {
	l, err := Line("cupping")
	require.NoError(t, err)
	assert.True(t, l.FreeDelivery)
	assert.Equal(t, 1000, l.MaxQuantity)
	assert.Len(t, l.AvailableVariants(), 6)

	carton, ok := l.Unit("carton")
	require.True(t, ok)
	assert.Equal(t, BagsPerCarton, carton.Factor)

	_, err = Line("soap")
	assert.Error(t, err)
	assert.Equal(t, []string{"cupping", "frankincense"}, LineIDs())
}

func TestRegions(t *testing.T) {
	assert.Len(t, Regions(), 58)

	alger, ok := LookupRegion("الجزائر")
	require.True(t, ok)
	assert.True(t, alger.HasOffice)
	assert.EqualValues(t, 350, alger.Office)
	assert.EqualValues(t, 500, alger.Home)

	tindouf, ok := LookupRegion("تندوف")
	require.True(t, ok)
	assert.False(t, tindouf.HasOffice)
	assert.EqualValues(t, 1300, tindouf.Home)

	_, ok = LookupRegion("Paris")
	assert.False(t, ok)
}

func TestVariantsAreCopies(t *testing.T) {
	l, _ := Line("cupping")
	vs := l.Variants()
	vs[0].PricePerBaseUnit = 1
	v, _ := l.Variant(vs[0].ID)
	assert.EqualValues(t, 17000, v.PricePerBaseUnit)
}
