package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	var folders bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logr := root.load()
			defer logr.Sync()

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			db, store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := store.Stats(ctx)
			if err != nil {
				return err
			}
			ambients, err := store.DistinctAmbients(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			heading(out, "Catalog")
			_, _ = fmt.Fprintf(out, "  chillers:      %d\n", stats.TotalChillers)
			_, _ = fmt.Fprintf(out, "  manufacturers: %d\n", stats.Manufacturers)
			_, _ = fmt.Fprintf(out, "  ambients (°F): %v\n", ambients)

			if !folders {
				return nil
			}
			groups, err := store.GroupByFolder(ctx)
			if err != nil {
				return err
			}
			for _, g := range groups {
				heading(out, "%s", g.ModelPrefix)
				for _, f := range g.Folders {
					_, _ = fmt.Fprintf(out, "  %-24s %4d  %v\n", f.FolderName, f.Count, f.Models)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&folders, "folders", false, "also list folders per model prefix")
	return cmd
}

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the chillers table and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logr := root.load()
			defer logr.Sync()

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			db, _, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			success(cmd.OutOrStdout(), "Schema ready (%s)", cfg.DBDriver)
			return nil
		},
	}
}
