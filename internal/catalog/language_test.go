package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguages(t *testing.T) {
	all := Languages()
	require.NotEmpty(t, all)
	assert.Equal(t, "en", DefaultLanguage().Code)

	_, ok := LookupLanguage("klingon")
	assert.False(t, ok)

	ja, ok := LookupLanguage(" JA ")
	require.True(t, ok)
	assert.Equal(t, "Japanese", ja.Name)
}

func TestNextLanguage_Cycles(t *testing.T) {
	all := Languages()
	l := all[len(all)-1]
	assert.Equal(t, all[0], NextLanguage(l))
	assert.Equal(t, all[1], NextLanguage(all[0]))
}

func TestOrderToggle(t *testing.T) {
	assert.Equal(t, Descending, Ascending.Toggle())
	assert.Equal(t, "asc", Descending.Toggle().String())
}
