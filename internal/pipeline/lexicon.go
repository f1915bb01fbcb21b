package pipeline

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/credit-cli/internal/extract"
)

// Lexicon holds the keyword buckets used to classify web-search content.
// Matching is accent-insensitive; entries are stored folded.
type Lexicon struct {
	Legal    []string `yaml:"legal"`
	Adverse  []string `yaml:"adverse"`
	Positive []string `yaml:"positive"`
}

// DefaultLexicon returns the built-in Portuguese keyword buckets.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Legal:    []string{"processo", "execucao", "falencia", "recuperacao judicial", "divida"},
		Adverse:  []string{"fraude", "irregularidade", "multa", "penalidade", "investigacao"},
		Positive: []string{"premio", "expansao", "crescimento", "inovacao", "sucesso"},
	}
}

// LoadLexicon reads keyword buckets from a YAML file. Empty buckets fall
// back to the defaults.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, eris.Wrapf(err, "pipeline: read lexicon %s", path)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, eris.Wrap(err, "pipeline: parse lexicon")
	}

	def := DefaultLexicon()
	if len(lex.Legal) == 0 {
		lex.Legal = def.Legal
	}
	if len(lex.Adverse) == 0 {
		lex.Adverse = def.Adverse
	}
	if len(lex.Positive) == 0 {
		lex.Positive = def.Positive
	}
	return lex.folded(), nil
}

func (l Lexicon) folded() Lexicon {
	fold := func(in []string) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = extract.Fold(s)
		}
		return out
	}
	return Lexicon{
		Legal:    fold(l.Legal),
		Adverse:  fold(l.Adverse),
		Positive: fold(l.Positive),
	}
}

// matchesAny reports whether the folded text contains any bucket keyword.
func matchesAny(foldedText string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(foldedText, kw) {
			return true
		}
	}
	return false
}
