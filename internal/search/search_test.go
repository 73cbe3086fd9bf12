package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Cancún, Q.Roo!", "cancun q roo"},
		{"  Recámara   PRINCIPAL ", "recamara principal"},
		{"Niño's--jardín", "nino s jardin"},
		{"3½ baños", "3 banos"},
		{"", ""},
		{"¡¿...?!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords("La casa en Cancún con 3 recámaras y alberca, CASA")
	assert.Equal(t, []string{"casa", "cancun", "3", "recamaras", "alberca"}, got)

	assert.Empty(t, Keywords("de la y el"))
	assert.Empty(t, Keywords("   "))
	assert.Equal(t, []string{"loft"}, Keywords("a loft x"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", ""))
	assert.Equal(t, 1.0, Similarity("casa", "casa"))
	assert.InDelta(t, 0.75, Similarity("casa", "cama"), 1e-9)
	// Measured in runes, not bytes.
	assert.InDelta(t, 0.8, Similarity("ñandu", "nandu"), 1e-9)
}

func TestTokenScore(t *testing.T) {
	tests := []struct {
		name           string
		keyword, token string
		want           float64
	}{
		{"exact", "casa", "casa", 1.0},
		{"prefix", "depa", "departamento", 0.9},
		{"contains", "mento", "departamento", 0.75},
		{"typo", "cancun", "cancum", (1 - 1.0/6) * 0.8},
		{"too different", "casa", "campo", 0},
		{"numeric needs exact", "3", "30", 0},
		{"numeric exact", "3", "3", 1.0},
		{"short keyword does not prefix", "ca", "casa", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TokenScore(tt.keyword, tt.token), 1e-9)
		})
	}
}

type doc struct {
	name   string
	fields []Field
}

func (d doc) SearchFields() []Field { return d.fields }

func titled(name, title, city string) doc {
	return doc{name: name, fields: []Field{
		{Name: "title", Text: title, Weight: WeightTitle},
		{Name: "city", Text: city, Weight: WeightCity},
	}}
}

func names(results []Result[doc]) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Item.name
	}
	return out
}

func TestRank(t *testing.T) {
	items := []doc{
		titled("B", "Departamento", "Polanco"),
		titled("D", "Bodega", "Monterrey"),
		titled("C", "Casa de campo", "Valle"),
		titled("A", "Casa en Polanco", "CDMX"),
	}

	t.Run("more matched keywords first, then score", func(t *testing.T) {
		results := Rank(items, "casa polanco")
		require.Len(t, results, 3)
		assert.Equal(t, []string{"A", "C", "B"}, names(results))

		assert.Equal(t, 2, results[0].Matched)
		assert.InDelta(t, 6.0, results[0].Score, 1e-9)
		assert.InDelta(t, 3.0, results[1].Score, 1e-9)
		assert.InDelta(t, 2.0, results[2].Score, 1e-9)
	})

	t.Run("typos still match", func(t *testing.T) {
		results := Rank(items, "polanko")
		require.Len(t, results, 2)
		assert.Equal(t, []string{"A", "B"}, names(results))
		assert.InDelta(t, 3*(1-1.0/7)*0.8, results[0].Score, 1e-9)
	})

	t.Run("ties keep original order", func(t *testing.T) {
		twins := []doc{titled("first", "Loft", ""), titled("second", "Loft", "")}
		assert.Equal(t, []string{"first", "second"}, names(Rank(twins, "loft")))
	})

	t.Run("blank query keeps everything", func(t *testing.T) {
		results := Rank(items, "  de la ")
		assert.Equal(t, []string{"B", "D", "C", "A"}, names(results))
		for _, r := range results {
			assert.Zero(t, r.Score)
		}
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, Rank(items, "xylofono"))
	})
}
