package mail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/valuer/internal/compose"
	"github.com/roach88/valuer/internal/testutil"
)

const sampleLink = "https://files.example.com/documents/valuation-Nordby%20AS-1700000000000.pdf"

func TestComposer_BodyGolden(t *testing.T) {
	c, err := NewComposer("")
	require.NoError(t, err)

	msg, err := c.Compose(testutil.SampleTree(), "Nordby AS", "post@nordby.example", sampleLink)
	require.NoError(t, err)

	assert.Equal(t, "post@nordby.example", msg.To)
	assert.Equal(t, "Valuation for Nordby AS", msg.Subject)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "sample_body", []byte(msg.Body))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Valuation for Nordby AS", Subject("Nordby AS"))
	assert.Equal(t, "Valuation for Nordby AS", Subject("  Nordby AS "))
	assert.Equal(t, "Valuation", Subject(""))
	assert.Equal(t, "Valuation", Subject("   "))
}

func TestComposer_DoesNotEscapeText(t *testing.T) {
	c, err := NewComposer("")
	require.NoError(t, err)

	msg, err := c.Compose(testutil.SampleTree(), "Berg & Sons <AS>", "", sampleLink)
	require.NoError(t, err)

	assert.Contains(t, msg.Body, "Lamp: 12.50 NOK")
	assert.Contains(t, msg.Body, "for Berg & Sons <AS>,")
	assert.NotContains(t, msg.Body, "&amp;")
}

func TestComposer_BlankRecipientAndIssuer(t *testing.T) {
	c, err := NewComposer("")
	require.NoError(t, err)

	tree := testutil.SampleTree()
	tree.Footer = compose.Footer{}

	msg, err := c.Compose(tree, "", "", sampleLink)
	require.NoError(t, err)

	assert.Equal(t, "Valuation", msg.Subject)
	assert.Contains(t, msg.Body, "Here is the valuation, totalling 140.63 NOK including VAT.")
	assert.True(t, len(msg.Body) > 0 && msg.Body[len(msg.Body)-1] != '\n')
}

func TestComposer_CustomTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.tpl")
	require.NoError(t, os.WriteFile(path, []byte("{{ total }} {{ currency }} at {{ link }}\n"), 0o600))

	c, err := NewComposer(path)
	require.NoError(t, err)

	msg, err := c.Compose(testutil.SampleTree(), "Nordby AS", "", "https://x.test/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "140.63 NOK at https://x.test/a.pdf", msg.Body)
}

func TestNewComposer_MissingTemplate(t *testing.T) {
	_, err := NewComposer(filepath.Join(t.TempDir(), "missing.tpl"))
	assert.Error(t, err)
}
