package gazetteer

import (
	"archive/zip"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/EpiAnnotator/internal/config"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/database/sqlite"
	"github.com/turtacn/EpiAnnotator/internal/testutil"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), config.SQLiteConfig{Path: sqlite.MemoryPath}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func ids(t *testing.T, store Store, names ...string) []string {
	t.Helper()
	recs, err := store.Lookup(context.Background(), names)
	require.NoError(t, err)
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.GeonameID
	}
	return out
}

func TestImporter_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)
	im, err := NewImporter(db, DialectSQLite, 2, testutil.NewMockLogger())
	require.NoError(t, err)

	stats, err := im.ImportGeonames(ctx, strings.NewReader(testutil.GeonamesDump()))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Records: 6, Names: 11, Skipped: 1}, stats)

	stats, err = im.ImportAlternateNames(ctx, strings.NewReader(testutil.AlternateNamesDump))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Names: 2, Skipped: 3}, stats)

	store, err := NewSQLStore(db, DialectSQLite, config.GazetteerConfig{LookupBatchSize: 2}, nil)
	require.NoError(t, err)

	// counts not refreshed yet
	assert.Empty(t, ids(t, store, "Cairo"))
	require.NoError(t, im.RefreshCounts(ctx))

	recs, err := store.Lookup(ctx, []string{"Cairo", "wa", "Сиэтл", "nowhere"})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, testutil.CairoEGID, recs[0].GeonameID)
	assert.Equal(t, testutil.CairoILID, recs[1].GeonameID)
	assert.Equal(t, testutil.SeattleID, recs[2].GeonameID)
	assert.Equal(t, testutil.WashingtonID, recs[3].GeonameID)

	assert.Equal(t, []string{"Cairo"}, recs[0].NamesUsed)
	assert.Equal(t, 3, recs[0].NameCount)
	assert.Equal(t, 1, recs[1].NameCount)
	assert.Equal(t, []string{"Сиэтл"}, recs[2].NamesUsed)
	assert.Equal(t, 3, recs[2].NameCount)
	assert.Equal(t, []string{"WA"}, recs[3].NamesUsed)
	assert.Equal(t, "PPLA2", recs[2].FeatureCode)
	assert.Equal(t, "033", recs[2].Admin2Code)
	assert.InDelta(t, -122.33207, recs[2].Longitude, 1e-9)
	assert.Equal(t, int64(737015), recs[2].Population)

	// importing again upserts without duplicating names
	stats, err = im.ImportGeonames(ctx, strings.NewReader(testutil.GeonamesDump()))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Records: 6, Names: 0, Skipped: 1}, stats)
	require.NoError(t, im.RefreshCounts(ctx))
	assert.Equal(t, []string{testutil.CairoEGID, testutil.CairoILID}, ids(t, store, "cairo"))
}

func writeZip(t *testing.T, members map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestImporter_ImportFile(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)
	im, err := NewImporter(db, DialectSQLite, 0, nil)
	require.NoError(t, err)

	archive := writeZip(t, map[string]string{
		"readme.txt": "GeoNames export\n",
		"cities.txt": testutil.GeonamesDump(),
	})
	stats, err := im.ImportFile(ctx, archive, KindGeonames)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Records)

	altPath := filepath.Join(t.TempDir(), "alternateNamesV2.txt")
	require.NoError(t, os.WriteFile(altPath, []byte(testutil.AlternateNamesDump), 0o644))
	stats, err = im.ImportFile(ctx, altPath, KindAlternateNames)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Names)

	store, err := NewSQLStore(db, DialectSQLite, config.GazetteerConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.CairoEGID}, ids(t, store, "القاهرة"))

	_, err = im.ImportFile(ctx, archive, KindAlternateNames)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGazetteerImportFailed))

	_, err = im.ImportFile(ctx, altPath, DumpKind("postcodes"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = im.ImportFile(ctx, filepath.Join(t.TempDir(), "missing.txt"), KindGeonames)
	assert.True(t, errors.IsCode(err, errors.ErrCodeIOError))
}

func TestImporter_Canceled(t *testing.T) {
	db := openMemoryDB(t)
	im, err := NewImporter(db, DialectSQLite, 0, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = im.ImportGeonames(ctx, strings.NewReader(testutil.GeonamesDump()))
	assert.True(t, errors.IsCode(err, errors.ErrCodeCanceled))
}

func TestImporter_PostgresStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	line := strings.Join([]string{
		testutil.NairobiID, "Nairobi", "Nairobi", "", "-1.28333", "36.81667", "P", "PPLC", "KE", "",
		"05", "", "", "", "2750547", "", "1661", "Africa/Nairobi", "2024-01-01",
	}, "\t")

	mock.ExpectBegin()
	upsert := mock.ExpectPrepare(`(?s)INSERT INTO geonames .*VALUES \(\$1, .*\$14\).*ON CONFLICT \(geonameid\) DO UPDATE`)
	names := mock.ExpectPrepare(`(?s)INSERT INTO alternatenames .*VALUES \(\$1, \$2, \$3\).*DO NOTHING`)
	upsert.ExpectExec().
		WithArgs(testutil.NairobiID, "Nairobi", "Nairobi", -1.28333, 36.81667, "P", "PPLC", "KE",
			"05", "", "", "", int64(2750547), "Africa/Nairobi").
		WillReturnResult(sqlmock.NewResult(0, 1))
	names.ExpectExec().
		WithArgs(testutil.NairobiID, "Nairobi", "nairobi").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	im, err := NewImporter(db, DialectPostgres, 10, nil)
	require.NoError(t, err)
	stats, err := im.ImportGeonames(context.Background(), strings.NewReader(line+"\n"))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Records: 1, Names: 1}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImporter_RollsBackOnWriteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	insert := mock.ExpectPrepare("INSERT INTO alternatenames")
	insert.ExpectExec().WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	im, err := NewImporter(db, DialectPostgres, 10, nil)
	require.NoError(t, err)
	_, err = im.ImportAlternateNames(context.Background(),
		strings.NewReader("1\t"+testutil.NairobiID+"\ten\tNairobi City\n"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeGazetteerImportFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDumpMember(t *testing.T) {
	assert.True(t, dumpMember("cities500.txt", KindGeonames))
	assert.True(t, dumpMember("dir/alternateNamesV2.txt", KindAlternateNames))
	assert.False(t, dumpMember("alternateNamesV2.txt", KindGeonames))
	assert.False(t, dumpMember("iso-languagecodes.txt", KindAlternateNames))
	assert.False(t, dumpMember("readme.txt", KindGeonames))
	assert.False(t, dumpMember("cities500.zip", KindGeonames))
}

//Personal.AI order the ending
