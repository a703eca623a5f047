package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/svnscope/svnscope-go/internal/cache"
	"github.com/svnscope/svnscope-go/internal/errors"
	"github.com/svnscope/svnscope-go/internal/pipeline"
	"github.com/svnscope/svnscope-go/internal/svn"
)

var checkWorkingCopy string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Reconstruct history and print the consistency diagnostics",
	Long: `Run ingestion, resolution and reconciliation without exporting,
then dump the consistency-check results as YAML. Mismatches between a
file's summed deltas and its working-copy line count are reported here,
never treated as fatal.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkWorkingCopy, "working-copy", "w", "", "working copy to analyze (overrides config)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if checkWorkingCopy != "" {
		cfg.Repository.WorkingCopy = checkWorkingCopy
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := svn.NewClient(cfg.Repository.WorkingCopy, cfg.Reconcile.RateLimit)
	workingCopy := svn.NewWorkingCopy(cfg.Repository.WorkingCopy)

	diffCache, err := cache.Open(cfg.Cache.Path, logger)
	if err != nil {
		return err
	}
	defer diffCache.Close()

	p := pipeline.New(
		svn.NewLogSource(client, logger),
		workingCopy,
		svn.NewDiffProvider(client),
		diffCache,
		workingCopy,
		nil, // no export
		cfg,
		logger,
	)

	result, err := p.Run(ctx)
	if err != nil {
		if errors.IsEmptyRepository(err) {
			fmt.Println("Repository log contains no revisions; nothing to check.")
			return nil
		}
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(result.Diagnostics)
}
