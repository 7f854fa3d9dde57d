// Package annotation runs the full annotation chain over documents: the
// linguistic pipeline, geoname disambiguation and, optionally, patient
// information extraction.
package annotation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/EpiAnnotator/internal/annotation/geoname"
	"github.com/turtacn/EpiAnnotator/internal/annotation/patientinfo"
	"github.com/turtacn/EpiAnnotator/internal/annotation/span"
	"github.com/turtacn/EpiAnnotator/internal/annotation/tokenize"
	"github.com/turtacn/EpiAnnotator/internal/config"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/internal/intelligence/classifier"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

// Document outcomes reported to the Observer.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// documentNamespace seeds the name-based IDs of documents submitted
// without one.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/turtacn/EpiAnnotator/document"))

// Observer receives per-document measurements in addition to the engine's.
type Observer interface {
	geoname.Observer
	ObserveDocument(status string, d time.Duration)
	ObservePatientInfo(n int)
}

// Request is one document to annotate.
type Request struct {
	// ID defaults to a name-based UUID of Text.
	ID   string    `json:"id,omitempty"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// Result pairs a request with its annotated document or its error.
type Result struct {
	Request  Request
	Document *span.Document
	Err      error
}

// Dependencies are the collaborators of a Service.
type Dependencies struct {
	Gazetteer geoname.Gazetteer
	Models    classifier.ModelSet
	Logger    logging.Logger
	// Observer may be nil.
	Observer Observer
}

// Service annotates documents. It is safe for concurrent use.
type Service struct {
	pipeline    *tokenize.Pipeline
	engine      *geoname.Engine
	patient     *patientinfo.Annotator
	logger      logging.Logger
	observer    Observer
	concurrency int
	docTimeout  time.Duration
}

// NewService wires the annotators from cfg. The classifier models must name
// the engine's features in order when they name them at all.
func NewService(cfg *config.Config, deps Dependencies) (*Service, error) {
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if err := deps.Models.Validate(); err != nil {
		return nil, err
	}
	if err := checkFeatures(deps.Models); err != nil {
		return nil, err
	}
	base, contextual, err := deps.Models.Scorers()
	if err != nil {
		return nil, err
	}

	pipeline := tokenize.NewPipeline(tokenize.Config{
		MaxNgramLength: cfg.Tokenizer.MaxNgramLength,
		PlaceLabel:     cfg.Annotator.PlaceEntityLabel,
		Stopwords:      tokenize.DefaultStopwords,
	})

	opts := []geoname.Option{
		geoname.WithPipeline(pipeline),
		geoname.WithLogger(deps.Logger.Named("geoname")),
	}
	if deps.Observer != nil {
		opts = append(opts, geoname.WithObserver(deps.Observer))
	}
	engine, err := geoname.NewEngine(geoname.ConfigFromSettings(cfg.Annotator), deps.Gazetteer, base, contextual, opts...)
	if err != nil {
		return nil, err
	}

	s := &Service{
		pipeline:    pipeline,
		engine:      engine,
		logger:      deps.Logger,
		observer:    deps.Observer,
		concurrency: cfg.Worker.Concurrency,
		docTimeout:  cfg.Worker.DocTimeout,
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if cfg.Annotator.EnablePatientInfo {
		s.patient = patientinfo.NewAnnotator(patientinfo.DefaultConfig(), deps.Logger.Named("patientinfo"))
	}
	return s, nil
}

func checkFeatures(set classifier.ModelSet) error {
	want := geoname.FeatureNames()
	for _, m := range []classifier.Model{set.Base, set.Contextual} {
		if m.Width() != len(want) {
			return errors.New(errors.ErrCodeClassifierModelInvalid, "model width does not match the feature vector").
				WithDetailf("%s: %d coefficients, %d features", m.Name, m.Width(), len(want))
		}
		for i, name := range m.Features {
			if name != want[i] {
				return errors.New(errors.ErrCodeClassifierModelInvalid, "model feature order differs from the engine").
					WithDetailf("%s[%d]: %q, want %q", m.Name, i, name, want[i])
			}
		}
	}
	return nil
}

// DocumentID returns the ID a request is annotated under.
func DocumentID(req Request) string {
	if req.ID != "" {
		return req.ID
	}
	return uuid.NewSHA1(documentNamespace, []byte(req.Text)).String()
}

// Annotate runs every annotator over one document.
func (s *Service) Annotate(ctx context.Context, req Request) (*span.Document, error) {
	if s.docTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.docTimeout)
		defer cancel()
	}
	started := time.Now()
	doc := span.NewDocument(DocumentID(req), req.Text)
	doc.Date = req.Date

	err := s.annotate(ctx, doc)
	s.observe(ctx, err, time.Since(started))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) annotate(ctx context.Context, doc *span.Document) error {
	if err := s.pipeline.Annotate(ctx, doc); err != nil {
		return err
	}
	if _, err := s.engine.Annotate(ctx, doc); err != nil {
		return err
	}
	if s.patient != nil {
		tier, err := s.patient.Annotate(ctx, doc)
		if err != nil {
			return err
		}
		if s.observer != nil {
			s.observer.ObservePatientInfo(tier.Len())
		}
	}
	return nil
}

func (s *Service) observe(ctx context.Context, err error, d time.Duration) {
	if s.observer == nil {
		return
	}
	status := StatusOK
	switch {
	case err == nil:
	case ctx.Err() != nil || errors.IsCode(err, errors.ErrCodeCanceled):
		status = StatusCanceled
	default:
		status = StatusFailed
	}
	s.observer.ObserveDocument(status, d)
}

// AnnotateBatch annotates reqs concurrently and returns one result per
// request, in order. Per-document failures are reported in the results; a
// classifier batch mismatch aborts the whole batch and is returned.
func (s *Service) AnnotateBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, req := range reqs {
		i, req := i, req
		results[i].Request = req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = errors.Wrap(err, errors.ErrCodeCanceled, "batch canceled")
				return nil
			}
			doc, err := s.Annotate(gctx, req)
			results[i].Document, results[i].Err = doc, err
			if err != nil {
				s.logger.Warn("document annotation failed",
					logging.DocumentID(DocumentID(req)), logging.Err(err))
				if errors.IsCode(err, errors.CodeClassifierMismatch) {
					return fmt.Errorf("document %s: %w", DocumentID(req), err)
				}
			}
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

//Personal.AI order the ending
