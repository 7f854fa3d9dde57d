package prometheus

import (
	"time"
)

// Document outcomes for DocumentsTotal.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// Buckets
var (
	StageDurationBuckets    = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}
	DocumentDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	CountBuckets            = []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}
)

// AnnotatorMetrics holds the annotation metrics. It implements the geoname
// engine's Observer and the gazetteer's CacheObserver.
type AnnotatorMetrics struct {
	DocumentsTotal        CounterVec
	DocumentDuration      HistogramVec
	StageDuration         HistogramVec
	CandidatesPerDocument HistogramVec
	ResolvedPerDocument   HistogramVec
	ClassifierRows        HistogramVec
	GazetteerCacheTotal   CounterVec
	PatientInfoSpans      CounterVec
	ImportedRowsTotal     CounterVec
}

// NewAnnotatorMetrics registers the annotation metrics on collector.
func NewAnnotatorMetrics(collector MetricsCollector) *AnnotatorMetrics {
	m := &AnnotatorMetrics{}

	m.DocumentsTotal = collector.RegisterCounter("documents_total", "Documents annotated", "status")
	m.DocumentDuration = collector.RegisterHistogram("document_duration_seconds", "Time to annotate one document", DocumentDurationBuckets)
	m.StageDuration = collector.RegisterHistogram("stage_duration_seconds", "Time spent in each disambiguation stage", StageDurationBuckets, "stage")
	m.CandidatesPerDocument = collector.RegisterHistogram("candidates_per_document", "Gazetteer candidates per document", CountBuckets)
	m.ResolvedPerDocument = collector.RegisterHistogram("resolved_locations_per_document", "Locations on the geonames tier per document", CountBuckets)
	m.ClassifierRows = collector.RegisterHistogram("classifier_batch_rows", "Feature rows per classifier call", CountBuckets, "pass")
	m.GazetteerCacheTotal = collector.RegisterCounter("gazetteer_cache_lookups_total", "Gazetteer names served from or missing in the cache", "result")
	m.PatientInfoSpans = collector.RegisterCounter("patient_info_spans_total", "Spans on the patientInfo tier")
	m.ImportedRowsTotal = collector.RegisterCounter("gazetteer_imported_rows_total", "Rows written by gazetteer imports", "kind")

	return m
}

func (m *AnnotatorMetrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *AnnotatorMetrics) ObserveCandidates(n int) {
	m.CandidatesPerDocument.WithLabelValues().Observe(float64(n))
}

func (m *AnnotatorMetrics) ObserveResolved(n int) {
	m.ResolvedPerDocument.WithLabelValues().Observe(float64(n))
}

func (m *AnnotatorMetrics) ObserveClassifierBatch(pass string, n int) {
	m.ClassifierRows.WithLabelValues(pass).Observe(float64(n))
}

func (m *AnnotatorMetrics) ObserveCacheLookup(hits, misses int) {
	if hits > 0 {
		m.GazetteerCacheTotal.WithLabelValues("hit").Add(float64(hits))
	}
	if misses > 0 {
		m.GazetteerCacheTotal.WithLabelValues("miss").Add(float64(misses))
	}
}

// ObserveDocument counts one finished document. Duration is only recorded
// for successful runs.
func (m *AnnotatorMetrics) ObserveDocument(status string, d time.Duration) {
	m.DocumentsTotal.WithLabelValues(status).Inc()
	if status == StatusOK {
		m.DocumentDuration.WithLabelValues().Observe(d.Seconds())
	}
}

func (m *AnnotatorMetrics) ObservePatientInfo(n int) {
	m.PatientInfoSpans.WithLabelValues().Add(float64(n))
}

// ObserveImport counts rows written by an import of the given dump kind.
func (m *AnnotatorMetrics) ObserveImport(kind string, rows int) {
	m.ImportedRowsTotal.WithLabelValues(kind).Add(float64(rows))
}

//Personal.AI order the ending
