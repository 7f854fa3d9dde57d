package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/EpiAnnotator/internal/infrastructure/gazetteer"
	"github.com/turtacn/EpiAnnotator/internal/testutil"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

// run executes the command tree and returns what it printed.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// sqliteConfig writes a config selecting a fresh SQLite gazetteer and a
// metrics textfile inside dir.
func sqliteConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeFile(t, dir, "epiannotate.yaml", fmt.Sprintf(`
log:
  level: error
gazetteer:
  driver: sqlite
sqlite:
  path: %s
metrics:
  textfile_path: %s
`, filepath.Join(dir, "geonames.sqlite"), filepath.Join(dir, "epiannotate.prom")))
}

// confidentModels writes classifier models that accept every candidate.
func confidentModels(t *testing.T, dir string) string {
	t.Helper()
	zeros := strings.TrimSuffix(strings.Repeat("0.0, ", 14), ", ")
	return writeFile(t, dir, "models.yaml", fmt.Sprintf(`
base:
  name: accept-all
  intercept: 10.0
  coefficients: [%s]
contextual:
  name: accept-all
  intercept: 10.0
  coefficients: [%s]
`, zeros, zeros))
}

func TestRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "epiannotate", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var subs []string
	for _, sub := range cmd.Commands() {
		subs = append(subs, sub.Name())
	}
	assert.Subset(t, subs, []string{"annotate", "gazetteer", "version"})

	for _, flag := range []string{"config", "log-level", "output", "no-color", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
	assert.Equal(t, "c", cmd.PersistentFlags().Lookup("config").Shorthand)
	assert.Equal(t, OutputText, cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestVersionCommand(t *testing.T) {
	orig := Version
	Version = "1.2.3"
	defer func() { Version = orig }()

	stdout, _, err := run(t, "", "-o", "json", "version")
	require.NoError(t, err)
	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.NotEmpty(t, info.GoVersion)

	stdout, _, err = run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "epiannotate 1.2.3 "), stdout)
}

func TestRootCommand_RejectsUnknownOutput(t *testing.T) {
	_, _, err := run(t, "", "-o", "xml", "version")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
	assert.Equal(t, errors.ExitStatusForCode(errors.ErrCodeValidation), ExitCode(err))
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	_, _, err := run(t, "", "-c", filepath.Join(t.TempDir(), "absent.yaml"), "version")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("plain")))
	assert.Equal(t, errors.ExitStatusForCode(errors.ErrCodeDocumentEmpty),
		ExitCode(errors.New(errors.ErrCodeDocumentEmpty, "empty")))
}

func TestExecute_UnknownSubcommand(t *testing.T) {
	assert.Equal(t, 1, Execute(context.Background(), []string{"--no-color", "unknownsubcommand"}))
}

func TestEndToEnd_SQLiteGazetteer(t *testing.T) {
	dir := t.TempDir()
	cfg := sqliteConfig(t, dir)
	geonames := writeFile(t, dir, "allCountries.txt", testutil.GeonamesDump())
	alternates := writeFile(t, dir, "alternateNamesV2.txt", testutil.AlternateNamesDump)

	// import
	stdout, _, err := run(t, "", "-c", cfg, "-o", "json", "gazetteer", "import", geonames)
	require.NoError(t, err)
	var imported []ImportResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &imported))
	require.Len(t, imported, 1)
	assert.Equal(t, gazetteer.KindGeonames, imported[0].Kind)
	assert.Equal(t, gazetteer.ImportStats{Records: 6, Names: 11, Skipped: 1}, imported[0].Stats)

	stdout, _, err = run(t, "", "-c", cfg, "gazetteer", "import", "--kind", "alternatenames", alternates)
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 records, 2 names, 3 skipped")

	// lookup
	stdout, _, err = run(t, "", "-c", cfg, "-o", "json", "gazetteer", "lookup", "Nairobi")
	require.NoError(t, err)
	var records []*gtypes.Record
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, testutil.NairobiID, records[0].GeonameID)

	stdout, _, err = run(t, "", "-c", cfg, "gazetteer", "lookup", "Cairo")
	require.NoError(t, err)
	assert.Contains(t, stdout, testutil.CairoEGID)
	assert.Contains(t, stdout, testutil.CairoILID)

	stdout, _, err = run(t, "", "-c", cfg, "gazetteer", "lookup", "Atlantis")
	require.NoError(t, err)
	assert.Equal(t, "no records\n", stdout)

	// annotate from stdin
	models := confidentModels(t, dir)
	stdout, _, err = run(t, "Cases were reported in Nairobi.", "-c", cfg, "-o", "json",
		"annotate", "--models", models, "--tiers", "geonames")
	require.NoError(t, err)

	var snapshot struct {
		ID    string `json:"id"`
		Tiers map[string][]struct {
			Text string `json:"text"`
			Data struct {
				GeonameID string  `json:"geonameid"`
				Score     float64 `json:"score"`
			} `json:"data"`
		} `json:"tiers"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &snapshot))
	assert.Len(t, snapshot.ID, 36)
	require.Len(t, snapshot.Tiers, 1)
	require.Len(t, snapshot.Tiers["geonames"], 1)
	assert.Equal(t, "Nairobi", snapshot.Tiers["geonames"][0].Text)
	assert.Equal(t, testutil.NairobiID, snapshot.Tiers["geonames"][0].Data.GeonameID)

	textfile, err := os.ReadFile(filepath.Join(dir, "epiannotate.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(textfile), `epiannotator_documents_total{status="ok"} 1`)

	// annotate a file as text
	report := writeFile(t, dir, "report.txt", "An outbreak hit Seattle.")
	stdout, _, err = run(t, "", "-c", cfg, "annotate", "--models", models, report)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "report.txt\n"), stdout)
	assert.Contains(t, stdout, "Seattle ("+testutil.SeattleID)

	// migrate on sqlite only ensures the schema
	stdout, _, err = run(t, "", "-c", cfg, "gazetteer", "migrate")
	require.NoError(t, err)
	assert.Equal(t, "sqlite schema is up to date\n", stdout)
}

func TestAnnotate_Failures(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "memory.yaml", "log:\n  level: error\ngazetteer:\n  driver: memory\n")

	_, _, err := run(t, "   ", "-c", cfg, "annotate")
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentEmpty), "got %v", err)

	good := writeFile(t, dir, "good.txt", "Cases were reported in Nairobi.")
	empty := writeFile(t, dir, "empty.txt", "")
	stdout, stderr, err := run(t, "", "-c", cfg, "-o", "json", "annotate", good, empty)
	assert.True(t, errors.IsCode(err, errors.ErrCodePipelineFailed), "got %v", err)
	assert.Contains(t, stdout, `"id":"good.txt"`)
	assert.Contains(t, stderr, "empty.txt")

	_, _, err = run(t, "x", "-c", cfg, "annotate", "--date", "yesterday")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, _, err = run(t, "", "-c", cfg, "annotate", filepath.Join(dir, "missing.txt"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeIOError))
}

func TestGazetteer_MemoryDriverLimits(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "memory.yaml", "log:\n  level: error\ngazetteer:\n  driver: memory\n")
	dump := writeFile(t, dir, "allCountries.txt", testutil.GeonamesDump())

	_, _, err := run(t, "", "-c", cfg, "gazetteer", "import", dump)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, _, err = run(t, "", "-c", cfg, "gazetteer", "migrate")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, _, err = run(t, "", "-c", cfg, "gazetteer", "import")
	assert.Error(t, err, "import needs a file")
}

//Personal.AI order the ending
