package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := `legal:
  - liminar
  - penhora
positive:
  - certificação
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lex, err := LoadLexicon(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"liminar", "penhora"}, lex.Legal)
	// Entries are stored folded.
	assert.Equal(t, []string{"certificacao"}, lex.Positive)
	// Missing buckets fall back to the defaults.
	assert.Equal(t, DefaultLexicon().Adverse, lex.Adverse)
}

func TestLoadLexicon_MissingFile(t *testing.T) {
	_, err := LoadLexicon(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadLexicon_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("legal: [unclosed"), 0o644))

	_, err := LoadLexicon(path)
	assert.Error(t, err)
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, matchesAny("empresa em recuperacao judicial desde 2022", DefaultLexicon().Legal))
	assert.False(t, matchesAny("empresa anuncia novo produto", DefaultLexicon().Legal))
	assert.False(t, matchesAny("", DefaultLexicon().Legal))
}
