package tokenize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/EpiAnnotator/internal/annotation/span"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

func texts(text string, toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = text[t.Start:t.End]
	}
	return out
}

func TestTokens(t *testing.T) {
	text := "Cases rose 12% in São Paulo, Brazil."
	toks := Tokens(text)
	assert.Equal(t, []string{"Cases", "rose", "12", "%", "in", "São", "Paulo", ",", "Brazil", "."}, texts(text, toks))
	assert.True(t, toks[3].Punct)
	assert.False(t, toks[5].Punct)
	assert.Equal(t, "São", text[toks[5].Start:toks[5].End])
	assert.Empty(t, Tokens("   \n\t"))
}

func TestSplitSentences(t *testing.T) {
	text := "Two cases in Seattle, WA. One death in Dr. Smith's ward!\n\nNew outbreak"
	toks := Tokens(text)
	got := SplitSentences(text, toks)
	require.Len(t, got, 4)

	var sentences []string
	for _, r := range got {
		sentences = append(sentences, text[toks[r[0]].Start:toks[r[1]-1].End])
	}
	assert.Equal(t, []string{
		"Two cases in Seattle, WA.",
		"One death in Dr.",
		"Smith's ward!",
		"New outbreak",
	}, sentences)

	assert.Equal(t, [][2]int{{0, 4}}, SplitSentences("3.5 mg", Tokens("3.5 mg")))
}

func TestPipeline_Annotate(t *testing.T) {
	doc := span.NewDocument("d1", "The outbreak hit Seattle, WA. In New York it spread.")
	require.NoError(t, NewPipeline(DefaultConfig()).Annotate(context.Background(), doc))
	require.True(t, doc.HasTiers(span.TierSentences, span.TierTokens, span.TierNgrams, span.TierNEs))

	sentences, _ := doc.Tier(span.TierSentences)
	assert.Equal(t, []string{"The outbreak hit Seattle, WA.", "In New York it spread."}, sentences.Labels())

	nes, _ := doc.Tier(span.TierNEs)
	var neTexts []string
	for _, s := range nes.Spans() {
		neTexts = append(neTexts, s.Text())
		assert.Equal(t, "GPE", s.Label)
	}
	assert.Equal(t, []string{"Seattle", "WA", "New York"}, neTexts)

	ngrams, _ := doc.Tier(span.TierNgrams)
	assert.Len(t, ngrams.SpansAt(17, 28), 1, "ngram bridges the comma")
	// 5 words give 5+4+3+2+1 ngrams; 5 words again in the second sentence
	assert.Equal(t, 30, ngrams.Len())
	for _, s := range ngrams.Spans() {
		assert.NotContains(t, s.Text(), ".")
	}
}

func TestPipeline_MaxNgramLength(t *testing.T) {
	doc := span.NewDocument("d1", "one two three")
	require.NoError(t, NewPipeline(Config{MaxNgramLength: 2}).Annotate(context.Background(), doc))
	ngrams, _ := doc.Tier(span.TierNgrams)
	assert.Equal(t, []string{"one", "one two", "two", "two three", "three"}, ngrams.Labels())
}

func TestPipeline_Errors(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	err := p.Annotate(context.Background(), span.NewDocument("d1", "  "))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentEmpty))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.Annotate(ctx, span.NewDocument("d1", "text"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeCanceled))
}

func TestSentences(t *testing.T) {
	doc := span.NewDocument("d1", "Five cases, two deaths. Three recovered.")
	_, err := Sentences(doc)
	assert.True(t, errors.IsCode(err, errors.CodeMissingTier))

	require.NoError(t, NewPipeline(DefaultConfig()).Annotate(context.Background(), doc))
	got, err := Sentences(doc)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[1].Index)

	var words []string
	for _, w := range got[0].Words {
		words = append(words, w.Text)
	}
	assert.Equal(t, []string{"Five", "cases", "two", "deaths"}, words)
	assert.Equal(t, 3, got[0].Words[3].Index)
	assert.Equal(t, "Three", doc.Text[got[1].Words[0].Start:got[1].Words[0].End])
}

//Personal.AI order the ending
