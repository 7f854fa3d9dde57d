// Package geoname resolves place-name spans to gazetteer records.
//
// One Engine serves many documents; each Annotate call runs the stages
// CollectCandidates, ScoreBase, EnrichContext, ScoreContextual,
// FilterByThreshold and ResolveOverlaps over a private arena of candidates
// and installs the result as the document's geonames tier.
package geoname

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/turtacn/EpiAnnotator/internal/annotation/mwis"
	"github.com/turtacn/EpiAnnotator/internal/annotation/span"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

// ─────────────────────────────────────────────────────────────────────────────
// Collaborators
// ─────────────────────────────────────────────────────────────────────────────

// Gazetteer looks up records by normalized name. Each record lists the
// alternate names that matched in NamesUsed.
type Gazetteer interface {
	Lookup(ctx context.Context, names []string) ([]*gtypes.Record, error)
}

// Scorer returns [p_negative, p_positive] for every feature vector, in order.
type Scorer interface {
	PredictProba(ctx context.Context, rows [][]float64) ([][2]float64, error)
}

// Pipeline adds the ngrams and nes tiers to a document.
type Pipeline interface {
	Annotate(ctx context.Context, doc *span.Document) error
}

// Observer receives per-document measurements.
type Observer interface {
	ObserveStage(stage string, d time.Duration)
	ObserveCandidates(n int)
	ObserveResolved(n int)
	ObserveClassifierBatch(pass string, n int)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(string, time.Duration) {}
func (nopObserver) ObserveCandidates(int)              {}
func (nopObserver) ObserveResolved(int)                {}
func (nopObserver) ObserveClassifierBatch(string, int) {}

// ─────────────────────────────────────────────────────────────────────────────
// Stages
// ─────────────────────────────────────────────────────────────────────────────

// Stage is a step of a document run.
type Stage int

const (
	StageCollectCandidates Stage = iota
	StageScoreBase
	StageEnrichContext
	StageScoreContextual
	StageFilterByThreshold
	StageResolveOverlaps
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageCollectCandidates:
		return "collect_candidates"
	case StageScoreBase:
		return "score_base"
	case StageEnrichContext:
		return "enrich_context"
	case StageScoreContextual:
		return "score_contextual"
	case StageFilterByThreshold:
		return "filter_by_threshold"
	case StageResolveOverlaps:
		return "resolve_overlaps"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Classifier pass names reported to the Observer.
const (
	PassBase       = "base"
	PassContextual = "contextual"
)

// ─────────────────────────────────────────────────────────────────────────────
// Engine
// ─────────────────────────────────────────────────────────────────────────────

// Engine is safe for concurrent use when its collaborators are.
type Engine struct {
	cfg        Config
	blocklist  map[string]struct{}
	gazetteer  Gazetteer
	base       Scorer
	contextual Scorer
	pipeline   Pipeline
	logger     logging.Logger
	observer   Observer
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPipeline runs p on documents that lack the ngrams or nes tier.
func WithPipeline(p Pipeline) Option { return func(e *Engine) { e.pipeline = p } }

// WithLogger sets the engine logger.
func WithLogger(l logging.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithObserver sets the measurement sink.
func WithObserver(o Observer) Option { return func(e *Engine) { e.observer = o } }

// NewEngine builds an engine. base scores local features, contextual scores
// the full vector.
func NewEngine(cfg Config, gazetteer Gazetteer, base, contextual Scorer, opts ...Option) (*Engine, error) {
	if gazetteer == nil || base == nil || contextual == nil {
		return nil, errors.New(errors.ErrCodeAnnotatorConfigError, "geoname engine needs a gazetteer and two scorers")
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAnnotatorConfigError, "invalid geoname engine config")
	}
	e := &Engine{
		cfg:        cfg,
		blocklist:  make(map[string]struct{}, len(cfg.Blocklist)),
		gazetteer:  gazetteer,
		base:       base,
		contextual: contextual,
		logger:     logging.NewNopLogger(),
		observer:   nopObserver{},
	}
	for _, w := range cfg.Blocklist {
		e.blocklist[w] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine constants.
func (e *Engine) Config() Config { return e.cfg }

// eligible reports whether an ngram may name a place: not blocklisted and
// starting with an upper-case (or caseless) character.
func (e *Engine) eligible(text string) bool {
	if _, blocked := e.blocklist[text]; blocked {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text)
	return r != utf8.RuneError && unicode.ToUpper(r) == r
}

// run is the state of one document.
type run struct {
	e     *Engine
	doc   *span.Document
	nes   *span.Tier
	stage Stage

	candidates []*Candidate
	survivors  []*Candidate
	spans      map[span.Key]*span.Span
	alternates map[CandidateID]map[CandidateID]struct{}
	nearby     map[CandidateID][]CandidateID
}

// Annotate resolves the place names of doc, installs the geonames tier and
// returns it.
func (e *Engine) Annotate(ctx context.Context, doc *span.Document) (*span.Tier, error) {
	_, tier, err := e.annotate(ctx, doc)
	return tier, err
}

func (e *Engine) annotate(ctx context.Context, doc *span.Document) (*run, *span.Tier, error) {
	r := &run{
		e:          e,
		doc:        doc,
		spans:      make(map[span.Key]*span.Span),
		alternates: make(map[CandidateID]map[CandidateID]struct{}),
		nearby:     make(map[CandidateID][]CandidateID),
	}
	log := e.logger.With(logging.DocumentID(doc.ID))

	stages := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StageCollectCandidates, r.collectCandidates},
		{StageScoreBase, r.scoreBase},
		{StageEnrichContext, func(context.Context) error { r.enrichContext(); return nil }},
		{StageScoreContextual, r.scoreContextual},
		{StageFilterByThreshold, func(context.Context) error { r.filterByThreshold(); return nil }},
	}
	for _, st := range stages {
		r.stage = st.stage
		started := time.Now()
		if err := st.fn(ctx); err != nil {
			log.Error("geoname annotation failed", logging.Stage(st.stage.String()), logging.Err(err))
			return r, nil, err
		}
		e.observer.ObserveStage(st.stage.String(), time.Since(started))
		if st.stage == StageCollectCandidates {
			e.observer.ObserveCandidates(len(r.candidates))
			log.Debug("candidate locations prepared", logging.Int("candidates", len(r.candidates)), logging.Int("spans", len(r.spans)))
		}
	}

	r.stage = StageResolveOverlaps
	started := time.Now()
	tier := r.resolveOverlaps()
	e.observer.ObserveStage(r.stage.String(), time.Since(started))
	e.observer.ObserveResolved(tier.Len())
	r.stage = StageDone

	doc.SetTier(span.TierGeonames, tier)
	log.Info("geonames resolved", logging.Int("candidates", len(r.candidates)), logging.Int("resolved", tier.Len()))
	return r, tier, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CollectCandidates
// ─────────────────────────────────────────────────────────────────────────────

func (r *run) requireTiers(ctx context.Context) (ngrams *span.Tier, err error) {
	if !r.doc.HasTiers(span.TierNgrams, span.TierNEs) && r.e.pipeline != nil {
		if err := r.e.pipeline.Annotate(ctx, r.doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodePipelineFailed, "linguistic pipeline failed")
		}
	}
	if ngrams, err = r.doc.MustTier(span.TierNgrams); err != nil {
		return nil, err
	}
	if r.nes, err = r.doc.MustTier(span.TierNEs); err != nil {
		return nil, err
	}
	return ngrams, nil
}

func (r *run) collectCandidates(ctx context.Context) error {
	ngrams, err := r.requireTiers(ctx)
	if err != nil {
		return err
	}

	byName := make(map[string][]*span.Span)
	var names []string
	seen := make(map[string]struct{})
	for _, sp := range ngrams.Spans() {
		key := gtypes.NormalizeName(sp.Text())
		byName[key] = append(byName[key], sp)
		if !r.e.eligible(sp.Text()) {
			continue
		}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			names = append(names, key)
		}
	}
	if len(names) == 0 {
		return nil
	}

	records, err := r.e.gazetteer.Lookup(ctx, names)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeGazetteerQueryFailed, "gazetteer lookup failed")
	}

	for _, rec := range mergeRecords(records) {
		c := newCandidate(CandidateID(len(r.candidates)), rec)
		for _, name := range rec.NamesUsed {
			for _, sp := range byName[gtypes.NormalizeName(name)] {
				c.attach(sp.Key())
				r.spans[sp.Key()] = sp
			}
		}
		// a record whose matched names no longer map to a span cannot be
		// featurized
		if len(c.spans) == 0 {
			continue
		}
		r.candidates = append(r.candidates, c)
	}

	if err := r.addCompoundSpans(); err != nil {
		return err
	}
	r.linkAlternates()
	for _, c := range r.candidates {
		r.localFeatures(c)
	}
	return nil
}

// mergeRecords folds duplicate records (one per lookup batch) together and
// orders them by GeonameID. Inputs are not modified.
func mergeRecords(records []*gtypes.Record) []*gtypes.Record {
	byID := make(map[string]*gtypes.Record, len(records))
	var out []*gtypes.Record
	for _, rec := range records {
		if prev, ok := byID[rec.GeonameID]; ok {
			prev.MergeNamesUsed(rec.NamesUsed...)
			continue
		}
		c := rec.Clone()
		byID[rec.GeonameID] = c
		out = append(out, c)
	}
	gtypes.SortRecords(out)
	return out
}

// addCompoundSpans links a candidate to an administrative division named
// right after it, as in "Seattle, WA", attaching the combined span to the
// contained candidate.
func (r *run) addCompoundSpans() error {
	spanCandidates := make(map[span.Key][]*Candidate)
	for _, c := range r.candidates {
		for k := range c.spans {
			spanCandidates[k] = append(spanCandidates[k], c)
		}
	}
	keys := make([]span.Key, 0, len(spanCandidates))
	for k := range spanCandidates {
		keys = append(keys, k)
	}
	sortKeys(keys)

	for _, ka := range keys {
		a := r.spans[ka]
		for _, kb := range keys {
			b := r.spans[kb]
			if ka == kb || !a.ComesBefore(b, r.e.cfg.CompoundMaxGap) {
				continue
			}
			if strings.Trim(r.doc.Text[a.End:b.Start], ", ") != "" {
				continue
			}
			var combined *span.Span
			for _, locA := range spanCandidates[ka] {
				for _, locB := range spanCandidates[kb] {
					if !locB.Record.HasFeaturePrefix("ADM") || locA.Record.FeatureCode == locB.Record.FeatureCode {
						continue
					}
					if ContainmentLevel(locB.Record, locA.Record) == LevelNone {
						continue
					}
					if combined == nil {
						var err error
						if combined, err = span.NewGroup([]*span.Span{a, b}, ""); err != nil {
							return err
						}
						if prev, ok := r.spans[combined.Key()]; ok {
							combined = prev
						} else {
							r.spans[combined.Key()] = combined
						}
					}
					locA.attach(combined.Key())
					locA.Parent = locB.ID
				}
			}
		}
	}
	return nil
}

// linkAlternates relates every pair of candidates sharing a span.
func (r *run) linkAlternates() {
	for i, a := range r.candidates {
		for _, b := range r.candidates[i+1:] {
			if !a.sharesSpanWith(b) {
				continue
			}
			r.link(a.ID, b.ID)
			r.link(b.ID, a.ID)
		}
	}
}

func (r *run) link(from, to CandidateID) {
	set, ok := r.alternates[from]
	if !ok {
		set = make(map[CandidateID]struct{})
		r.alternates[from] = set
	}
	set[to] = struct{}{}
}

// ─────────────────────────────────────────────────────────────────────────────
// Scoring
// ─────────────────────────────────────────────────────────────────────────────

func (r *run) predict(ctx context.Context, pass string, scorer Scorer) ([][2]float64, error) {
	rows := make([][]float64, len(r.candidates))
	for i, c := range r.candidates {
		rows[i] = c.Features.Values()
	}
	r.e.observer.ObserveClassifierBatch(pass, len(rows))
	probs, err := scorer.PredictProba(ctx, rows)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeClassifierNotLoaded, "classifier call failed").WithDetail(pass)
	}
	if len(probs) != len(rows) {
		return nil, errors.New(errors.CodeClassifierMismatch, "classifier returned a different number of scores").
			WithDetailf("%s pass: sent %d, got %d", pass, len(rows), len(probs))
	}
	return probs, nil
}

func (r *run) scoreBase(ctx context.Context) error {
	if len(r.candidates) == 0 {
		return nil
	}
	probs, err := r.predict(ctx, PassBase, r.e.base)
	if err != nil {
		return err
	}
	for i, c := range r.candidates {
		c.BaseScore = probs[i][1]
		c.HighConfidence = c.BaseScore > r.e.cfg.HighConfidenceThreshold
	}
	return nil
}

func (r *run) scoreContextual(ctx context.Context) error {
	if len(r.candidates) == 0 {
		return nil
	}
	probs, err := r.predict(ctx, PassContextual, r.e.contextual)
	if err != nil {
		return err
	}
	for i, c := range r.candidates {
		c.Score = probs[i][1]
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FilterByThreshold / ResolveOverlaps
// ─────────────────────────────────────────────────────────────────────────────

// filterByThreshold keeps candidates scoring above the threshold. Dropped
// candidates stay in the arena so they can still be reported as parents.
func (r *run) filterByThreshold() {
	r.survivors = r.survivors[:0]
	for _, c := range r.candidates {
		if c.Score > r.e.cfg.ScoreThreshold {
			r.survivors = append(r.survivors, c)
		}
	}
}

type resolvedSpan struct {
	candidate *Candidate
	span      *span.Span
}

func (r *run) resolveOverlaps() *span.Tier {
	var intervals []mwis.Interval[resolvedSpan]
	for _, c := range r.survivors {
		for _, k := range c.SpanKeys() {
			sp := r.spans[k]
			intervals = append(intervals, mwis.Interval[resolvedSpan]{
				Start:  sp.Start,
				End:    sp.End,
				Weight: float64(sp.Size()) + c.Score,
				Value:  resolvedSpan{candidate: c, span: sp},
			})
		}
	}
	chosen := mwis.Find(intervals)
	out := make([]*span.Span, len(chosen))
	for i, iv := range chosen {
		c := iv.Value.candidate
		out[i] = iv.Value.span.WithData(c.Record.Name, r.location(c.ID, make(map[CandidateID]bool)))
	}
	return span.NewTier(out...)
}

// location builds the exported view of a candidate and its parent chain.
func (r *run) location(id CandidateID, visiting map[CandidateID]bool) *gtypes.Location {
	c := r.candidates[id]
	visiting[id] = true
	loc := &gtypes.Location{Record: *c.Record.Clone(), Score: c.Score}
	if c.Parent != NoCandidate && !visiting[c.Parent] {
		loc.ParentLocation = r.location(c.Parent, visiting)
	}
	return loc
}

//Personal.AI order the ending
