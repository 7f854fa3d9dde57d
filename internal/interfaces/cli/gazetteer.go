package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/EpiAnnotator/internal/infrastructure/database/postgres"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/database/sqlite"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/gazetteer"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

func newGazetteerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gazetteer",
		Short: "Build and query the place-name gazetteer",
	}
	cmd.AddCommand(
		newGazetteerImportCmd(),
		newGazetteerLookupCmd(),
		newGazetteerMigrateCmd(),
	)
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// import
// ─────────────────────────────────────────────────────────────────────────────

// ImportResult reports one imported dump file.
type ImportResult struct {
	File  string                `json:"file"`
	Kind  gazetteer.DumpKind    `json:"kind"`
	Stats gazetteer.ImportStats `json:"stats"`
}

type importResults []ImportResult

func (r importResults) RenderText(w io.Writer) error {
	for _, res := range r {
		if _, err := fmt.Fprintf(w, "%s (%s): %d records, %d names, %d skipped\n",
			res.File, res.Kind, res.Stats.Records, res.Stats.Names, res.Stats.Skipped); err != nil {
			return err
		}
	}
	return nil
}

func newGazetteerImportCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Load GeoNames dump files (.txt or .zip) into the gazetteer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config

			metrics, collector, err := newMetrics(cfg, cliCtx.Logger)
			if err != nil {
				return err
			}
			handle, err := gazetteer.Open(cmd.Context(), cfg, cliCtx.Logger, nil)
			if err != nil {
				return err
			}
			defer handle.Close()
			if handle.Importer == nil {
				return errors.Newf(errors.ErrCodeValidation, "the %s gazetteer cannot import dumps", cfg.Gazetteer.Driver)
			}

			results := make(importResults, 0, len(args))
			for _, path := range args {
				stats, err := handle.Importer.ImportFile(cmd.Context(), path, gazetteer.DumpKind(kind))
				if err != nil {
					return err
				}
				if metrics != nil {
					metrics.ObserveImport(kind, stats.Records+stats.Names)
				}
				results = append(results, ImportResult{File: path, Kind: gazetteer.DumpKind(kind), Stats: stats})
			}
			if _, err := handle.InvalidateCache(cmd.Context()); err != nil {
				cliCtx.Logger.Warn("stale lookups may stay cached", logging.Err(err))
			}
			writeTextfile(cfg, collector, cliCtx.Logger)
			return PrintResult(cmd, results)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(gazetteer.KindGeonames),
		fmt.Sprintf("dump format (%s, %s)", gazetteer.KindGeonames, gazetteer.KindAlternateNames))
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// lookup
// ─────────────────────────────────────────────────────────────────────────────

type lookupResults []*gtypes.Record

func (r lookupResults) RenderText(w io.Writer) error {
	if len(r) == 0 {
		_, err := fmt.Fprintln(w, "no records")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Feature", "Country", "Admin1", "Population", "Names", "Matched"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, rec := range r {
		table.Append([]string{
			rec.GeonameID,
			rec.Name,
			rec.FeatureCode,
			rec.CountryCode,
			rec.Admin1Code,
			strconv.FormatInt(rec.Population, 10),
			strconv.Itoa(rec.NameCount),
			strings.Join(rec.NamesUsed, "; "),
		})
	}
	table.Render()
	return nil
}

func newGazetteerLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup NAME...",
		Short: "Show the records matching place names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			handle, err := gazetteer.Open(cmd.Context(), cliCtx.Config, cliCtx.Logger, nil)
			if err != nil {
				return err
			}
			defer handle.Close()

			records, err := handle.Store.Lookup(cmd.Context(), args)
			if err != nil {
				return err
			}
			return PrintResult(cmd, lookupResults(records))
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// migrate
// ─────────────────────────────────────────────────────────────────────────────

// SchemaStatus reports the gazetteer schema after migrate.
type SchemaStatus struct {
	Driver  string `json:"driver"`
	Version uint   `json:"version,omitempty"`
	Dirty   bool   `json:"dirty,omitempty"`
}

func (s SchemaStatus) String() string {
	if s.Driver != "postgres" {
		return fmt.Sprintf("%s schema is up to date", s.Driver)
	}
	return fmt.Sprintf("postgres schema at version %d (dirty: %t)", s.Version, s.Dirty)
}

func newGazetteerMigrateCmd() *cobra.Command {
	var rollback int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the gazetteer schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg, log := cliCtx.Config, cliCtx.Logger

			switch cfg.Gazetteer.Driver {
			case "sqlite":
				if rollback > 0 {
					return errors.New(errors.ErrCodeValidation, "rollback is only supported on postgres")
				}
				db, err := sqlite.Open(cmd.Context(), cfg.SQLite, log)
				if err != nil {
					return err
				}
				defer db.Close()
				return PrintResult(cmd, SchemaStatus{Driver: "sqlite"})
			case "postgres":
				conn, err := postgres.NewConnection(cfg.Database, log)
				if err != nil {
					return err
				}
				defer conn.Close()
				if rollback > 0 {
					err = postgres.RollbackMigration(conn.DB(), rollback)
				} else {
					err = postgres.RunMigrations(conn.DB(), log)
				}
				if err != nil {
					return err
				}
				version, dirty, err := postgres.MigrationStatus(conn.DB())
				if err != nil {
					return err
				}
				return PrintResult(cmd, SchemaStatus{Driver: "postgres", Version: version, Dirty: dirty})
			default:
				return errors.Newf(errors.ErrCodeValidation, "the %s gazetteer has no schema", cfg.Gazetteer.Driver)
			}
		},
	}
	cmd.Flags().IntVar(&rollback, "rollback", 0, "revert this many postgres migrations instead of upgrading")
	return cmd
}

//Personal.AI order the ending
