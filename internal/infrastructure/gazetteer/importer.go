package gazetteer

import (
	"archive/zip"
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

// DumpKind names a GeoNames export format.
type DumpKind string

const (
	// KindGeonames is the main table: allCountries.txt, cities*.txt, XX.txt.
	KindGeonames DumpKind = "geonames"
	// KindAlternateNames is alternateNames.txt or alternateNamesV2.txt.
	KindAlternateNames DumpKind = "alternatenames"
)

const (
	geonamesColumns       = 19
	alternateNamesColumns = 4
	maxLineBytes          = 4 * 1024 * 1024
)

// alternate name "languages" that are codes or links rather than names
var skippedLanguages = map[string]struct{}{
	"link": {}, "post": {}, "iata": {}, "icao": {}, "faac": {},
	"wkdt": {}, "unlc": {}, "fr_1793": {}, "abbr": {},
}

// ImportStats counts what an import wrote. Names already present are not
// counted.
type ImportStats struct {
	Records int `json:"records"`
	Names   int `json:"names"`
	Skipped int `json:"skipped"`
}

func (s *ImportStats) add(o ImportStats) {
	s.Records += o.Records
	s.Names += o.Names
	s.Skipped += o.Skipped
}

// Importer loads GeoNames tab-separated dumps into the gazetteer tables.
// Rows are written in transactions of BatchSize lines; lines that cannot be
// parsed are counted as skipped.
type Importer struct {
	db        *sql.DB
	dialect   Dialect
	batchSize int
	logger    logging.Logger
}

// NewImporter builds an importer over db.
func NewImporter(db *sql.DB, dialect Dialect, batchSize int, log logging.Logger) (*Importer, error) {
	if err := dialect.validate(); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, errors.New(errors.ErrCodeGazetteerUnavailable, "importer needs a database")
	}
	if batchSize < 1 {
		batchSize = 1000
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Importer{db: db, dialect: dialect, batchSize: batchSize, logger: log}, nil
}

func (im *Importer) upsertGeonameSQL() string {
	return `INSERT INTO geonames (geonameid, name, asciiname, latitude, longitude,
	feature_class, feature_code, country_code, admin1_code, admin2_code, admin3_code, admin4_code,
	population, timezone)
VALUES (` + im.dialect.placeholders(1, 14) + `)
ON CONFLICT (geonameid) DO UPDATE SET
	name = excluded.name, asciiname = excluded.asciiname,
	latitude = excluded.latitude, longitude = excluded.longitude,
	feature_class = excluded.feature_class, feature_code = excluded.feature_code,
	country_code = excluded.country_code,
	admin1_code = excluded.admin1_code, admin2_code = excluded.admin2_code,
	admin3_code = excluded.admin3_code, admin4_code = excluded.admin4_code,
	population = excluded.population, timezone = excluded.timezone`
}

func (im *Importer) insertNameSQL() string {
	return `INSERT INTO alternatenames (geonameid, alternatename, alternatename_lemmatized)
VALUES (` + im.dialect.placeholders(1, 3) + `)
ON CONFLICT (geonameid, alternatename) DO NOTHING`
}

// parseGeoname parses one line of the main table and returns the record
// with the names it is known by.
func parseGeoname(line string) (*gtypes.Record, []string, bool) {
	f := strings.Split(line, "\t")
	if len(f) < geonamesColumns || f[0] == "" || f[1] == "" {
		return nil, nil, false
	}
	lat, err := strconv.ParseFloat(f[4], 64)
	if err != nil {
		return nil, nil, false
	}
	lon, err := strconv.ParseFloat(f[5], 64)
	if err != nil {
		return nil, nil, false
	}
	var pop int64
	if f[14] != "" {
		if pop, err = strconv.ParseInt(f[14], 10, 64); err != nil {
			return nil, nil, false
		}
	}
	rec := &gtypes.Record{
		GeonameID:    f[0],
		Name:         f[1],
		ASCIIName:    f[2],
		Latitude:     lat,
		Longitude:    lon,
		FeatureClass: f[6],
		FeatureCode:  f[7],
		CountryCode:  f[8],
		Admin1Code:   f[10],
		Admin2Code:   f[11],
		Admin3Code:   f[12],
		Admin4Code:   f[13],
		Population:   pop,
		Timezone:     f[17],
	}
	names := []string{f[1], f[2]}
	if f[3] != "" {
		names = append(names, strings.Split(f[3], ",")...)
	}
	return rec, names, true
}

// parseAlternateName returns the geonameid and name of one alternate names
// line, rejecting code-like entries.
func parseAlternateName(line string) (string, string, bool) {
	f := strings.Split(line, "\t")
	if len(f) < alternateNamesColumns || f[1] == "" || strings.TrimSpace(f[3]) == "" {
		return "", "", false
	}
	if _, skip := skippedLanguages[f[2]]; skip {
		return "", "", false
	}
	return f[1], f[3], true
}

// batchWriter commits every batchSize lines.
type batchWriter struct {
	im      *Importer
	ctx     context.Context
	tx      *sql.Tx
	stmts   []*sql.Stmt
	queries []string
	pending int
}

func (im *Importer) newBatchWriter(ctx context.Context, queries ...string) *batchWriter {
	return &batchWriter{im: im, ctx: ctx, queries: queries}
}

func (w *batchWriter) begin() error {
	tx, err := w.im.db.BeginTx(w.ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeGazetteerImportFailed, "begin import transaction")
	}
	w.tx = tx
	w.stmts = w.stmts[:0]
	for _, q := range w.queries {
		stmt, err := tx.PrepareContext(w.ctx, q)
		if err != nil {
			tx.Rollback()
			w.tx = nil
			return errors.Wrap(err, errors.ErrCodeGazetteerImportFailed, "prepare import statement")
		}
		w.stmts = append(w.stmts, stmt)
	}
	return nil
}

// exec runs the i-th statement and reports whether it wrote a row.
func (w *batchWriter) exec(i int, args ...any) (bool, error) {
	if w.tx == nil {
		if err := w.begin(); err != nil {
			return false, err
		}
	}
	res, err := w.stmts[i].ExecContext(w.ctx, args...)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeGazetteerImportFailed, "write gazetteer row")
	}
	n, err := res.RowsAffected()
	return err != nil || n > 0, nil
}

// lineDone counts a processed line and commits when the batch is full.
func (w *batchWriter) lineDone() error {
	w.pending++
	if w.pending >= w.im.batchSize {
		return w.commit()
	}
	return nil
}

func (w *batchWriter) commit() error {
	if w.tx == nil {
		return nil
	}
	for _, s := range w.stmts {
		s.Close()
	}
	err := w.tx.Commit()
	w.tx = nil
	w.pending = 0
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeGazetteerImportFailed, "commit import batch")
	}
	return nil
}

func (w *batchWriter) abort() {
	if w.tx != nil {
		for _, s := range w.stmts {
			s.Close()
		}
		w.tx.Rollback()
		w.tx = nil
	}
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	return sc
}

// ImportGeonames upserts the records of a main-table dump and registers
// their name, ASCII name and listed alternate names.
func (im *Importer) ImportGeonames(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats
	w := im.newBatchWriter(ctx, im.upsertGeonameSQL(), im.insertNameSQL())
	defer w.abort()

	sc := newScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, errors.Wrap(err, errors.ErrCodeCanceled, "geonames import canceled")
		}
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, names, ok := parseGeoname(line)
		if !ok {
			stats.Skipped++
			continue
		}
		if _, err := w.exec(0, rec.GeonameID, rec.Name, rec.ASCIIName, rec.Latitude, rec.Longitude,
			rec.FeatureClass, rec.FeatureCode, rec.CountryCode,
			rec.Admin1Code, rec.Admin2Code, rec.Admin3Code, rec.Admin4Code,
			rec.Population, rec.Timezone); err != nil {
			return stats, err
		}
		stats.Records++
		seen := make(map[string]struct{}, len(names))
		for _, n := range names {
			n = strings.TrimSpace(n)
			key := gtypes.NormalizeName(n)
			if key == "" {
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			wrote, err := w.exec(1, rec.GeonameID, n, key)
			if err != nil {
				return stats, err
			}
			if wrote {
				stats.Names++
			}
		}
		if err := w.lineDone(); err != nil {
			return stats, err
		}
	}
	if err := sc.Err(); err != nil {
		return stats, errors.Wrap(err, errors.ErrCodeIOError, "read geonames dump")
	}
	if err := w.commit(); err != nil {
		return stats, err
	}
	im.logger.Info("geonames imported",
		logging.Int("records", stats.Records),
		logging.Int("names", stats.Names),
		logging.Int("skipped", stats.Skipped))
	return stats, nil
}

// ImportAlternateNames adds the names of an alternate names dump. Names of
// geonameids missing from the geonames table are stored but never returned
// by lookups.
func (im *Importer) ImportAlternateNames(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats
	w := im.newBatchWriter(ctx, im.insertNameSQL())
	defer w.abort()

	sc := newScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, errors.Wrap(err, errors.ErrCodeCanceled, "alternate names import canceled")
		}
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, name, ok := parseAlternateName(line)
		if !ok {
			stats.Skipped++
			continue
		}
		name = strings.TrimSpace(name)
		wrote, err := w.exec(0, id, name, gtypes.NormalizeName(name))
		if err != nil {
			return stats, err
		}
		if wrote {
			stats.Names++
		}
		if err := w.lineDone(); err != nil {
			return stats, err
		}
	}
	if err := sc.Err(); err != nil {
		return stats, errors.Wrap(err, errors.ErrCodeIOError, "read alternate names dump")
	}
	if err := w.commit(); err != nil {
		return stats, err
	}
	im.logger.Info("alternate names imported",
		logging.Int("names", stats.Names),
		logging.Int("skipped", stats.Skipped))
	return stats, nil
}

// RefreshCounts rebuilds alternatename_counts from alternatenames. Lookups
// only return records that have a count row.
func (im *Importer) RefreshCounts(ctx context.Context) error {
	tx, err := im.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeGazetteerImportFailed, "begin count refresh")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM alternatename_counts`); err != nil {
		return errors.Wrap(err, errors.ErrCodeGazetteerImportFailed, "clear name counts")
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO alternatename_counts (geonameid, count)
SELECT geonameid, COUNT(*) FROM alternatenames GROUP BY geonameid`); err != nil {
		return errors.Wrap(err, errors.ErrCodeGazetteerImportFailed, "count alternate names")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeGazetteerImportFailed, "commit count refresh")
	}
	return nil
}

// ImportFile imports a dump of the given kind from a .txt file or a .zip
// archive holding one, then refreshes the name counts.
func (im *Importer) ImportFile(ctx context.Context, path string, kind DumpKind) (ImportStats, error) {
	var importFn func(context.Context, io.Reader) (ImportStats, error)
	switch kind {
	case KindGeonames:
		importFn = im.ImportGeonames
	case KindAlternateNames:
		importFn = im.ImportAlternateNames
	default:
		return ImportStats{}, errors.Newf(errors.ErrCodeValidation, "unknown dump kind %q", string(kind))
	}

	var stats ImportStats
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return stats, errors.Wrap(err, errors.ErrCodeIOError, "open dump archive").WithDetail(path)
		}
		defer zr.Close()
		found := false
		for _, f := range zr.File {
			if !dumpMember(f.Name, kind) {
				continue
			}
			found = true
			rc, err := f.Open()
			if err != nil {
				return stats, errors.Wrap(err, errors.ErrCodeIOError, "open archive member").WithDetail(f.Name)
			}
			s, err := importFn(ctx, rc)
			rc.Close()
			stats.add(s)
			if err != nil {
				return stats, err
			}
		}
		if !found {
			return stats, errors.Newf(errors.ErrCodeGazetteerImportFailed, "no %s dump in %s", kind, path)
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return stats, errors.Wrap(err, errors.ErrCodeIOError, "open dump").WithDetail(path)
		}
		defer f.Close()
		s, err := importFn(ctx, f)
		stats.add(s)
		if err != nil {
			return stats, err
		}
	}
	if err := im.RefreshCounts(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

// dumpMember picks the .txt members of an archive; readme and the
// iso-languagecodes file that ship inside alternateNames.zip are ignored.
func dumpMember(name string, kind DumpKind) bool {
	base := strings.ToLower(filepath.Base(name))
	if !strings.HasSuffix(base, ".txt") || strings.HasPrefix(base, "readme") {
		return false
	}
	isAlternate := strings.HasPrefix(base, "alternatenames")
	if strings.HasPrefix(base, "iso-languagecodes") {
		return false
	}
	return isAlternate == (kind == KindAlternateNames)
}

//Personal.AI order the ending
