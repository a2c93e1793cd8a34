package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"chiller-selector/internal/models"
	"chiller-selector/internal/normalize"
	"chiller-selector/internal/parser"
	"chiller-selector/internal/services"
)

type searchOptions struct {
	capacity float64
	ambient  int
	ewt      float64
	lwt      float64
	all      bool
	csvPath  string
}

// selectionColumns are the record fields shown for each ranked chiller.
var selectionColumns = []string{
	normalize.FieldModel,
	normalize.FieldManufacturer,
	normalize.FieldCapacity,
	normalize.FieldEfficiency,
	normalize.FieldWaterflow,
	normalize.FieldFolder,
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Select the best chiller for a capacity and ambient",
		Example: `  chillerctl search --capacity 100 --ambient 105
  chillerctl search --capacity 250 --ambient 95 --ewt 12 --lwt 7 --csv compare.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.capacity, "capacity", 0, "required capacity in tons (required)")
	f.IntVarP(&opts.ambient, "ambient", "a", 0, "ambient in °F (required)")
	f.Float64Var(&opts.ewt, "ewt", 0, "entering water temperature in °C")
	f.Float64Var(&opts.lwt, "lwt", 0, "leaving water temperature in °C")
	f.BoolVar(&opts.all, "all", false, "list every match instead of the top three")
	f.StringVar(&opts.csvPath, "csv", "", "write the comparison of the top options to this CSV file")
	_ = cmd.MarkFlagRequired("capacity")
	_ = cmd.MarkFlagRequired("ambient")
	return cmd
}

func runSearch(cmd *cobra.Command, root *rootOptions, opts *searchOptions) error {
	cfg, logr := root.load()
	defer logr.Sync()

	req := models.SearchRequest{CapacityTons: opts.capacity, AmbientF: opts.ambient}
	if cmd.Flags().Changed("ewt") {
		ewt := opts.ewt
		req.EwtC = &ewt
	}
	if cmd.Flags().Changed("lwt") {
		lwt := opts.lwt
		req.LwtC = &lwt
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := services.NewSelectorService(store, cfg.Selector.ToleranceLevels, logr.Logger).FindBestMatch(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSelection(out, result, opts.all)

	if cfg.RedisURL != "" {
		if history, err := services.NewRedisHistoryStore(cfg.RedisURL); err != nil {
			warn(cmd.ErrOrStderr(), "search history not saved: %v", err)
		} else {
			defer history.Close()
			if _, err := services.NewHistoryService(history, cfg.HistorySize).Record(ctx, req); err != nil {
				warn(cmd.ErrOrStderr(), "search history not saved: %v", err)
			}
		}
	}

	if opts.csvPath != "" && result.BestOption != nil {
		if err := writeComparisonFile(opts.csvPath, result.TopOptions()); err != nil {
			return err
		}
		success(out, "Comparison written to %s", opts.csvPath)
	}
	return nil
}

func printSelection(w io.Writer, result *models.SelectionResult, all bool) {
	info(w, "%s", result.Summary)

	if result.BestOption == nil {
		warn(w, "No chillers matched")
		if len(result.Fallback) == 0 {
			_, _ = fmt.Fprintln(w, "No other ambient has a match either.")
			return
		}
		_, _ = fmt.Fprintln(w, "Matches exist at other ambients:")
		for _, g := range result.Fallback {
			_, _ = fmt.Fprintf(w, "  %d°F: %d chiller(s) within ±%.1f%% (%.1f–%.1f tons)\n",
				g.AmbientF, g.Count, g.ToleranceUsed*100, g.CapacityMin, g.CapacityMax)
		}
		return
	}

	success(w, "Best option: %s", result.BestOption.Model)

	rows := result.TopOptions()
	if all {
		rows = result.AllMatches
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tMODEL\tMANUFACTURER\tTONS\tKW/TON\tUSGPM\tFOLDER")
	for i := range rows {
		_, _ = fmt.Fprintf(tw, "%d", rows[i].Rank)
		for _, col := range selectionColumns {
			_, _ = fmt.Fprintf(tw, "\t%s", parser.FieldValue(&rows[i].ChillerRecord, col))
		}
		_, _ = fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}

func writeComparisonFile(path string, chillers []models.RankedChiller) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := services.WriteComparisonCSV(f, chillers); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
