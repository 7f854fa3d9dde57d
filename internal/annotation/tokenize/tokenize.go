// Package tokenize is a lightweight linguistic pipeline: it splits text into
// sentences and tokens and derives the ngrams and nes tiers the geoname
// engine reads. Named entities are approximated by runs of capitalized
// words; a statistical tagger can replace it behind the same interface.
package tokenize

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/turtacn/EpiAnnotator/internal/annotation/match"
	"github.com/turtacn/EpiAnnotator/internal/annotation/span"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

// Token is a byte range of the text. Punct tokens are single punctuation
// characters.
type Token struct {
	Start int
	End   int
	Punct bool
}

// Tokens splits text on whitespace; each punctuation character becomes its
// own token.
func Tokens(text string) []Token {
	var out []Token
	pos := 0
	for pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if unicode.IsSpace(r) {
			pos += size
			continue
		}
		if isPunctuation(r) {
			out = append(out, Token{Start: pos, End: pos + size, Punct: true})
			pos += size
			continue
		}
		start := pos
		for pos < len(text) {
			r, size = utf8.DecodeRuneInString(text[pos:])
			if unicode.IsSpace(r) || isPunctuation(r) {
				break
			}
			pos += size
		}
		out = append(out, Token{Start: start, End: pos})
	}
	return out
}

func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

// SplitSentences groups tokens into sentences, returning [first, last)
// token index ranges. A sentence ends after '.', '!' or '?' when the next
// token starts with whitespace, or at a blank line.
func SplitSentences(text string, toks []Token) [][2]int {
	var out [][2]int
	first := 0
	for i, t := range toks {
		last := i+1 == len(toks)
		end := false
		if !last {
			gap := text[t.End:toks[i+1].Start]
			switch {
			case strings.Count(gap, "\n") >= 2:
				end = true
			case t.Punct && strings.ContainsAny(text[t.Start:t.End], ".!?") && gap != "":
				end = true
			}
		}
		if end || last {
			out = append(out, [2]int{first, i + 1})
			first = i + 1
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

// Config tunes the pipeline.
type Config struct {
	MaxNgramLength int
	// PlaceLabel is the entity label given to capitalized runs.
	PlaceLabel string
	// Stopwords are stripped from the front of capitalized runs.
	Stopwords []string
}

// DefaultStopwords are capitalized sentence openers that never start a name.
var DefaultStopwords = []string{
	"A", "An", "And", "As", "At", "But", "By", "For", "From", "He", "If", "In",
	"It", "Of", "On", "She", "The", "There", "They", "This", "To", "We", "With",
}

// DefaultConfig returns ngrams of up to five words labeled GPE.
func DefaultConfig() Config {
	return Config{MaxNgramLength: 5, PlaceLabel: "GPE", Stopwords: DefaultStopwords}
}

// Pipeline adds the sentences, tokens, ngrams and nes tiers to documents.
type Pipeline struct {
	cfg       Config
	stopwords map[string]struct{}
}

// NewPipeline builds a pipeline.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.MaxNgramLength < 1 {
		cfg.MaxNgramLength = 1
	}
	if cfg.PlaceLabel == "" {
		cfg.PlaceLabel = "GPE"
	}
	p := &Pipeline{cfg: cfg, stopwords: make(map[string]struct{}, len(cfg.Stopwords))}
	for _, w := range cfg.Stopwords {
		p.stopwords[w] = struct{}{}
	}
	return p
}

// Annotate installs the tiers on doc, replacing existing ones.
func (p *Pipeline) Annotate(ctx context.Context, doc *span.Document) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCanceled, "tokenization canceled")
	}
	if strings.TrimSpace(doc.Text) == "" {
		return errors.New(errors.ErrCodeDocumentEmpty, "document has no text").WithDetail(doc.ID)
	}

	toks := Tokens(doc.Text)
	var sentences, tokens, ngrams, nes []*span.Span
	for _, t := range toks {
		tokens = append(tokens, span.MustNew(doc, t.Start, t.End, ""))
	}
	for _, rng := range SplitSentences(doc.Text, toks) {
		sentToks := toks[rng[0]:rng[1]]
		sentences = append(sentences, span.MustNew(doc, sentToks[0].Start, sentToks[len(sentToks)-1].End, ""))

		var words []Token
		for _, t := range sentToks {
			if !t.Punct {
				words = append(words, t)
			}
		}
		for i := range words {
			for j := i; j < len(words) && j-i < p.cfg.MaxNgramLength; j++ {
				ngrams = append(ngrams, span.MustNew(doc, words[i].Start, words[j].End, ""))
			}
		}
		nes = append(nes, p.capitalizedRuns(doc, sentToks)...)
	}

	doc.SetTier(span.TierSentences, span.NewTier(sentences...))
	doc.SetTier(span.TierTokens, span.NewTier(tokens...))
	doc.SetTier(span.TierNgrams, span.NewTier(ngrams...))
	doc.SetTier(span.TierNEs, span.NewTier(nes...))
	return nil
}

// capitalizedRuns returns spans over maximal runs of capitalized words
// separated only by whitespace, minus leading stopwords.
func (p *Pipeline) capitalizedRuns(doc *span.Document, toks []Token) []*span.Span {
	var out []*span.Span
	var run []Token
	flush := func() {
		for len(run) > 0 {
			if _, stop := p.stopwords[doc.Text[run[0].Start:run[0].End]]; !stop {
				break
			}
			run = run[1:]
		}
		if len(run) > 0 {
			out = append(out, span.MustNew(doc, run[0].Start, run[len(run)-1].End, p.cfg.PlaceLabel))
		}
		run = nil
	}
	for _, t := range toks {
		if t.Punct || !capitalized(doc.Text[t.Start:t.End]) {
			flush()
			continue
		}
		run = append(run, t)
	}
	flush()
	return out
}

func capitalized(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

// ---------------------------------------------------------------------------
// Match sentences
// ---------------------------------------------------------------------------

// Sentences converts the sentences and tokens tiers of an annotated document
// into match sentences of word tokens.
func Sentences(doc *span.Document) ([]*match.Sentence, error) {
	sentTier, err := doc.MustTier(span.TierSentences)
	if err != nil {
		return nil, err
	}
	tokTier, err := doc.MustTier(span.TierTokens)
	if err != nil {
		return nil, err
	}
	var out []*match.Sentence
	for i, g := range sentTier.GroupSpansByContainingSpan(tokTier, false) {
		s := &match.Sentence{Index: i}
		for _, tok := range g.Inner {
			r, _ := utf8.DecodeRuneInString(tok.Text())
			if tok.Size() == utf8.RuneLen(r) && isPunctuation(r) {
				continue
			}
			s.Words = append(s.Words, match.Word{Index: len(s.Words), Text: tok.Text(), Start: tok.Start, End: tok.End})
		}
		out = append(out, s)
	}
	return out, nil
}

//Personal.AI order the ending
