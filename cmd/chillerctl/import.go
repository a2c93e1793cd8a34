package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"chiller-selector/internal/config"
	"chiller-selector/internal/parser"
	"chiller-selector/internal/services"
)

type importOptions struct {
	file    string
	ambient int
	ewt     float64
	lwt     float64
	preview bool
}

func newImportCmd(root *rootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Parse a rating table and store its rows",
		Long: `Reads a tab, comma, space separated or HTML rating table, stamps every row
with the given ambient and water temperatures, and stores the valid rows.
Use --preview to see the parsed table without storing it.`,
		Example: `  chillerctl import --file achx.tsv --ambient 105 --ewt 12 --lwt 7
  pbpaste | chillerctl import --ambient 95 --preview`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "-", "table file, or - for stdin")
	f.IntVarP(&opts.ambient, "ambient", "a", 0, "rated ambient in °F for every row")
	f.Float64Var(&opts.ewt, "ewt", 0, "entering water temperature in °C")
	f.Float64Var(&opts.lwt, "lwt", 0, "leaving water temperature in °C")
	f.BoolVar(&opts.preview, "preview", false, "show the parsed table without storing it")
	return cmd
}

func runImport(cmd *cobra.Command, root *rootOptions, opts *importOptions) error {
	cfg, logr := root.load()
	defer logr.Sync()

	bc, err := opts.batchContext(cmd, cfg)
	if err != nil {
		return err
	}

	text, err := readInput(opts.file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := parser.NewParser(logr.Logger).Parse(text, bc)
	for _, w := range result.Warnings {
		warn(out, "%s", w)
	}
	if len(result.Rows) == 0 {
		return errors.New("nothing to import")
	}

	records := result.Records()
	if opts.preview {
		_, _ = fmt.Fprint(out, parser.FormatTable(records, result.Columns))
		info(out, "%d of %d rows valid, folder %q (%s separated)",
			result.ValidCount(), len(result.Rows), bc.FolderName(), result.Delimiter)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	bar := newProgressBar(cmd.ErrOrStderr(), len(records), "importing")
	res := services.NewImportService(store, cfg.Selector.ImportBatchSize, logr.Logger).
		ImportWithProgress(ctx, records, func(done int) {
			_ = bar.Set(done)
		})
	_ = bar.Finish()

	for _, e := range res.Errors {
		warn(out, "%s", e)
	}
	if res.Imported == 0 {
		return errors.New("no chillers imported")
	}
	success(out, "Imported %d chillers into %q (batch %s)", res.Imported, bc.FolderName(), res.BatchID)
	return nil
}

// batchContext turns the flags that were actually set into the rating point
// shared by every row. The ambient must be a rated test point.
func (o *importOptions) batchContext(cmd *cobra.Command, cfg *config.Config) (parser.BatchContext, error) {
	var bc parser.BatchContext
	flags := cmd.Flags()

	if flags.Changed("ambient") {
		if !cfg.IsRatedAmbient(o.ambient) {
			return bc, fmt.Errorf("--ambient must be one of %v", cfg.Selector.RatedAmbients)
		}
		ambient := o.ambient
		bc.AmbientF = &ambient
	}
	if flags.Changed("ewt") {
		ewt := o.ewt
		bc.EwtC = &ewt
	}
	if flags.Changed("lwt") {
		lwt := o.lwt
		bc.LwtC = &lwt
	}
	return bc, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read table: %w", err)
	}
	return string(data), nil
}
