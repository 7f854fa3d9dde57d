package gazetteer

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/EpiAnnotator/internal/config"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

// Dialect selects the SQL flavor of a database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) validate() error {
	switch d {
	case DialectSQLite, DialectPostgres:
		return nil
	}
	return errors.Newf(errors.ErrCodeGazetteerDriver, "unsupported sql dialect %q", string(d))
}

// placeholder returns the bind parameter for the n-th (1-based) argument.
func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d Dialect) placeholders(from, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.placeholder(from + i)
	}
	return strings.Join(parts, ", ")
}

// namesSeparator joins the matched alternate names in one result column.
const namesSeparator = ";"

func (d Dialect) aggregateNames() string {
	if d == DialectPostgres {
		return "string_agg(a.alternatename, '" + namesSeparator + "')"
	}
	return "group_concat(a.alternatename, '" + namesSeparator + "')"
}

func (d Dialect) lookupQuery(n int) string {
	return `SELECT g.geonameid, g.name, g.asciiname, g.latitude, g.longitude,
	g.feature_class, g.feature_code, g.country_code,
	g.admin1_code, g.admin2_code, g.admin3_code, g.admin4_code,
	g.population, g.timezone, c.count AS name_count, ` + d.aggregateNames() + ` AS names_used
FROM geonames g
JOIN alternatename_counts c ON c.geonameid = g.geonameid
JOIN alternatenames a ON a.geonameid = g.geonameid
WHERE a.alternatename_lemmatized IN (` + d.placeholders(1, n) + `)
GROUP BY g.geonameid, c.count
ORDER BY g.geonameid`
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLStore
// ─────────────────────────────────────────────────────────────────────────────

// SQLStore looks names up in the geonames, alternatenames and
// alternatename_counts tables. Names are queried in chunks of at most
// BatchSize bind parameters; records found by several chunks are merged.
type SQLStore struct {
	db        *sql.DB
	dialect   Dialect
	batchSize int
	timeout   time.Duration
	logger    logging.Logger
}

// NewSQLStore builds a store over db.
func NewSQLStore(db *sql.DB, dialect Dialect, cfg config.GazetteerConfig, log logging.Logger) (*SQLStore, error) {
	if err := dialect.validate(); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, errors.New(errors.ErrCodeGazetteerUnavailable, "sql store needs a database")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	batch := cfg.LookupBatchSize
	if batch < 1 {
		batch = 500
	}
	return &SQLStore{db: db, dialect: dialect, batchSize: batch, timeout: cfg.QueryTimeout, logger: log}, nil
}

// Lookup returns the records carrying any of names, ordered by GeonameID.
func (s *SQLStore) Lookup(ctx context.Context, names []string) ([]*gtypes.Record, error) {
	names = uniqueNames(names)
	set := newRecordSet()
	for start := 0; start < len(names); start += s.batchSize {
		end := start + s.batchSize
		if end > len(names) {
			end = len(names)
		}
		if err := s.lookupChunk(ctx, names[start:end], set); err != nil {
			return nil, err
		}
	}
	records := set.records()
	s.logger.Debug("gazetteer lookup",
		logging.String("dialect", string(s.dialect)),
		logging.Int("names", len(names)),
		logging.Int("records", len(records)))
	return records, nil
}

func (s *SQLStore) lookupChunk(ctx context.Context, names []string, set *recordSet) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	rows, err := s.db.QueryContext(ctx, s.dialect.lookupQuery(len(names)), args...)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeGazetteerQueryFailed, "gazetteer query failed")
	}
	defer rows.Close()

	for rows.Next() {
		var rec gtypes.Record
		var namesUsed string
		if err := rows.Scan(
			&rec.GeonameID, &rec.Name, &rec.ASCIIName, &rec.Latitude, &rec.Longitude,
			&rec.FeatureClass, &rec.FeatureCode, &rec.CountryCode,
			&rec.Admin1Code, &rec.Admin2Code, &rec.Admin3Code, &rec.Admin4Code,
			&rec.Population, &rec.Timezone, &rec.NameCount, &namesUsed,
		); err != nil {
			return errors.Wrap(err, errors.ErrCodeGazetteerRecordBad, "scan gazetteer row")
		}
		if namesUsed != "" {
			rec.NamesUsed = strings.Split(namesUsed, namesSeparator)
		}
		set.add(&rec)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeGazetteerQueryFailed, "gazetteer query failed")
	}
	return nil
}

//Personal.AI order the ending
