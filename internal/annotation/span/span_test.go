package span

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

func TestNew_RejectsDegenerateBounds(t *testing.T) {
	doc := NewDocument("d1", "Seattle, WA")

	cases := []struct {
		name       string
		start, end int
	}{
		{"empty", 3, 3},
		{"reversed", 5, 2},
		{"negative", -1, 2},
		{"past end", 0, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(doc, tc.start, tc.end, "")
			assert.Nil(t, s)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeSpanInvalid))
		})
	}

	_, err := New(nil, 0, 1, "")
	assert.True(t, errors.IsCode(err, errors.CodeSpanInvalid))
}

func TestNew_DefaultLabelIsText(t *testing.T) {
	doc := NewDocument("d1", "Seattle, WA")
	s, err := New(doc, 9, 11, "")
	require.NoError(t, err)
	assert.Equal(t, "WA", s.Label)
	assert.Equal(t, "WA", s.Text())
	assert.Equal(t, 2, s.Size())
	assert.Equal(t, Key{Start: 9, End: 11}, s.Key())
	assert.Equal(t, "9-11:WA", s.String())
}

func TestSpan_Relations(t *testing.T) {
	doc := NewDocument("d1", "Seattle, WA is rainy")
	seattle := MustNew(doc, 0, 7, "")
	wa := MustNew(doc, 9, 11, "")
	whole := MustNew(doc, 0, 11, "")

	assert.True(t, seattle.ComesBefore(wa, 4))
	assert.False(t, seattle.ComesBefore(wa, 1))
	assert.False(t, wa.ComesBefore(seattle, 100))
	assert.True(t, whole.Contains(wa))
	assert.False(t, wa.Contains(whole))
	assert.True(t, whole.Overlaps(seattle))
	assert.False(t, seattle.Overlaps(wa))

	ext, err := seattle.ExtendedThrough(wa)
	require.NoError(t, err)
	assert.Equal(t, "Seattle, WA", ext.Text())
}

func TestNewGroup(t *testing.T) {
	doc := NewDocument("d1", "one two three")
	a := MustNew(doc, 0, 3, "")
	b := MustNew(doc, 8, 13, "")

	g, err := NewGroup([]*Span{b, a}, "pair")
	require.NoError(t, err)
	assert.Equal(t, 0, g.Start)
	assert.Equal(t, 13, g.End)
	assert.Equal(t, "pair", g.Label)
	assert.Len(t, g.Members(), 2)

	_, err = NewGroup(nil, "")
	assert.Error(t, err)

	other := NewDocument("d2", "one two three")
	_, err = NewGroup([]*Span{a, MustNew(other, 0, 3, "")}, "")
	assert.Error(t, err)
}

func TestSpan_MarshalJSON_OmitsDocument(t *testing.T) {
	doc := NewDocument("d1", "Seattle, WA")
	s := MustNew(doc, 0, 7, "").WithData("Seattle", map[string]int{"id": 5809844})

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":0,"end":7,"label":"Seattle","text":"Seattle","data":{"id":5809844}}`, string(raw))
}

func TestDocument_Tiers(t *testing.T) {
	doc := NewDocument("d1", "Seattle, WA")
	_, err := doc.MustTier(TierNgrams)
	assert.True(t, errors.IsCode(err, errors.CodeMissingTier))

	doc.SetTier(TierNgrams, NewTier(MustNew(doc, 0, 7, "")))
	doc.SetTier(TierNEs, NewTier())
	assert.True(t, doc.HasTiers(TierNgrams, TierNEs))
	assert.False(t, doc.HasTiers(TierGeonames))
	assert.Equal(t, []string{TierNEs, TierNgrams}, doc.TierNames())

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"d1","tiers":{"nes":[],"ngrams":[{"start":0,"end":7,"label":"Seattle","text":"Seattle"}]}}`, string(raw))
}

//Personal.AI order the ending
