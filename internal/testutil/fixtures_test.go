package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRequest_IsValid(t *testing.T) {
	require.NoError(t, SampleRequest().Validate())
}

func TestSampleTree_Totals(t *testing.T) {
	tree := SampleTree()
	assert.Len(t, tree.Sections, 3)
	assert.Equal(t, "112.50", tree.Totals.Netto)
	assert.Equal(t, "28.13", tree.Totals.VAT)
	assert.Equal(t, "140.63", tree.Totals.Total)
}
