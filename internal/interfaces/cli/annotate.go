package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/EpiAnnotator/internal/annotation/patientinfo"
	"github.com/turtacn/EpiAnnotator/internal/annotation/span"
	"github.com/turtacn/EpiAnnotator/internal/application/annotation"
	"github.com/turtacn/EpiAnnotator/internal/config"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/gazetteer"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/EpiAnnotator/internal/intelligence/classifier"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

const dateLayout = "2006-01-02"

// allTiers selects every tier for output.
const allTiers = "all"

type annotateOptions struct {
	Date        string
	Tiers       []string
	PatientInfo bool
	ModelPath   string
	Concurrency int
}

func newAnnotateCmd() *cobra.Command {
	opts := &annotateOptions{}
	cmd := &cobra.Command{
		Use:   "annotate [file...]",
		Short: "Annotate documents with resolved place names",
		Long: "Annotate reads each file, or standard input when no file or \"-\" is given,\n" +
			"and prints the requested tiers. JSON output holds one document per line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Date, "date", "", "publication date of the documents (YYYY-MM-DD)")
	f.StringSliceVar(&opts.Tiers, "tiers", []string{span.TierGeonames, span.TierPatientInfo}, "tiers to print, or \"all\"")
	f.BoolVar(&opts.PatientInfo, "patient-info", false, "extract case counts and patient descriptions")
	f.StringVar(&opts.ModelPath, "models", "", "classifier model file (overrides classifier.model_path)")
	f.IntVar(&opts.Concurrency, "concurrency", 0, "documents annotated in parallel (overrides worker.concurrency)")
	return cmd
}

func runAnnotate(cmd *cobra.Command, args []string, opts *annotateOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	log := cliCtx.Logger
	watchLogLevel(cmd, cliCtx)

	cfg := *cliCtx.Config
	if cmd.Flags().Changed("patient-info") {
		cfg.Annotator.EnablePatientInfo = opts.PatientInfo
	}
	if opts.ModelPath != "" {
		cfg.Classifier.ModelPath = opts.ModelPath
	}
	if opts.Concurrency > 0 {
		cfg.Worker.Concurrency = opts.Concurrency
	}

	var date time.Time
	if opts.Date != "" {
		if date, err = time.Parse(dateLayout, opts.Date); err != nil {
			return errors.Wrap(err, errors.ErrCodeValidation, "invalid --date").WithDetail(opts.Date)
		}
	}
	reqs, err := readRequests(cmd.InOrStdin(), args, date)
	if err != nil {
		return err
	}

	metrics, collector, err := newMetrics(&cfg, log)
	if err != nil {
		return err
	}
	var observer annotation.Observer
	var cacheObserver gazetteer.CacheObserver
	if metrics != nil {
		observer, cacheObserver = metrics, metrics
	}

	handle, err := gazetteer.Open(ctx, &cfg, log, cacheObserver)
	if err != nil {
		return err
	}
	defer handle.Close()

	models, err := classifier.LoadModelSet(cfg.Classifier.ModelPath)
	if err != nil {
		return err
	}
	svc, err := annotation.NewService(&cfg, annotation.Dependencies{
		Gazetteer: handle.Store,
		Models:    models,
		Logger:    log,
		Observer:  observer,
	})
	if err != nil {
		return err
	}

	results, batchErr := svc.AnnotateBatch(ctx, reqs)

	tiers := opts.Tiers
	if len(tiers) == 1 && tiers[0] == allTiers {
		tiers = nil
	}
	var failed []annotation.Result
	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}
		if err := writeDocument(out, cliCtx.OutputFormat, r.Document, tiers); err != nil {
			return errors.Wrap(err, errors.ErrCodeIOError, "failed to write output")
		}
	}

	writeTextfile(&cfg, collector, log)

	if batchErr != nil {
		return batchErr
	}
	switch len(failed) {
	case 0:
		return nil
	case len(results):
		if len(results) == 1 {
			return failed[0].Err
		}
	}
	for _, r := range failed {
		PrintError(cmd, fmt.Errorf("%s: %w", annotation.DocumentID(r.Request), r.Err))
	}
	return errors.Newf(errors.ErrCodePipelineFailed, "%d of %d documents failed", len(failed), len(results))
}

// readRequests reads one request per path; "-" or no path reads in. File
// documents are identified by their base name.
func readRequests(in io.Reader, paths []string, date time.Time) ([]annotation.Request, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	reqs := make([]annotation.Request, 0, len(paths))
	for _, p := range paths {
		var (
			raw []byte
			err error
			id  string
		)
		if p == "-" {
			raw, err = io.ReadAll(in)
		} else {
			raw, err = os.ReadFile(p)
			id = filepath.Base(p)
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeIOError, "failed to read document").WithDetail(p)
		}
		reqs = append(reqs, annotation.Request{ID: id, Text: string(raw), Date: date})
	}
	return reqs, nil
}

func writeDocument(w io.Writer, format string, doc *span.Document, tiers []string) error {
	if format == OutputJSON {
		return json.NewEncoder(w).Encode(doc.Export(tiers...))
	}
	return writeDocumentText(w, doc, tiers)
}

// writeDocumentText prints one line per span of the selected tiers.
func writeDocumentText(w io.Writer, doc *span.Document, tiers []string) error {
	if len(tiers) == 0 {
		tiers = doc.TierNames()
	}
	if _, err := fmt.Fprintf(w, "%s\n", color.New(color.Bold).Sprint(doc.ID)); err != nil {
		return err
	}
	for _, name := range tiers {
		tier, ok := doc.Tier(name)
		if !ok {
			continue
		}
		for _, s := range tier.Spans() {
			if _, err := fmt.Fprintf(w, "  %-11s %5d-%-5d %-30q %s\n", name, s.Start, s.End, s.Text(), describe(s.Data)); err != nil {
				return err
			}
		}
	}
	return nil
}

func describe(data any) string {
	switch v := data.(type) {
	case *gtypes.Location:
		out := fmt.Sprintf("%s (%s, %s %s) %s", v.Name, v.GeonameID, v.FeatureCode, v.CountryCode, color.GreenString("%.3f", v.Score))
		if v.ParentLocation != nil {
			out += " in " + v.ParentLocation.Name
		}
		return out
	case patientinfo.Attributes:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// newMetrics builds the metrics when enabled or when a textfile is set.
func newMetrics(cfg *config.Config, log logging.Logger) (*prometheus.AnnotatorMetrics, prometheus.MetricsCollector, error) {
	if !cfg.Metrics.Enabled && cfg.Metrics.TextfilePath == "" {
		return nil, nil, nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: cfg.Metrics.Namespace}, log)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to create metrics collector")
	}
	return prometheus.NewAnnotatorMetrics(collector), collector, nil
}

func writeTextfile(cfg *config.Config, collector prometheus.MetricsCollector, log logging.Logger) {
	if collector == nil || cfg.Metrics.TextfilePath == "" {
		return
	}
	if err := collector.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		log.Warn("failed to write metrics textfile", logging.String("path", cfg.Metrics.TextfilePath), logging.Err(err))
	}
}

//Personal.AI order the ending
