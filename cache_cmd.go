package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trainertoe/voice/ui"
)

var (
	prewarmCmd = &cobra.Command{
		Use:   "prewarm",
		Short: "Generate every catalog phrase missing from the cache",
		Long:  paragraph(fmt.Sprintf("\n%s the phrase cache. Each catalog phrase not cached yet is generated once, with a short pause between requests.", keyword("Pre-warm"))),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newPipeline(true)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			report, err := p.dispatcher.PreWarm(cmd.Context())
			report.Err = err
			fmt.Print(ui.PreWarm(uiCfg, report))
			return err
		},
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show phrase cache and cost statistics",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			p, err := newPipeline(false)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			d := p.dispatcher
			fmt.Print(ui.Stats(uiCfg, d.CostStats(), d.CacheStats(), d.Health()))
			return nil
		},
	}

	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached phrase",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			p, err := newPipeline(false)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			before := p.dispatcher.CacheStats().ColdCount
			if err := p.dispatcher.ClearCache(); err != nil {
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			fmt.Printf("Removed %d cached phrases from %s\n", before, p.cache.Dir())
			return nil
		},
	}
)
