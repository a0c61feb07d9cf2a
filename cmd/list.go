package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/commercelab/shopbench/internal/config"
	"github.com/commercelab/shopbench/internal/platform"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available datasets and platform configuration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			envPath, _ := cmd.Flags().GetString("env")
			datasetsPath, _ := cmd.Flags().GetString("datasets")

			datasets, defaultName, err := config.LoadDatasets(datasetsPath)
			if err != nil {
				return fmt.Errorf("failed to load dataset registry: %w", err)
			}

			names := make([]string, 0, len(datasets))
			for name := range datasets {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Printf("Available datasets:\n\n")
			for _, name := range names {
				d := datasets[name]
				marker := ""
				if name == defaultName {
					marker = " (default)"
				}
				fmt.Printf("  - %s%s\n", name, marker)
				fmt.Printf("    Tests: %s\n", d.Tests)
				fmt.Printf("    Ground truth: %s\n", d.GroundTruth)
				fmt.Printf("    Scoring prompt: %s\n\n", d.ScoringPrompt)
			}

			env := config.LoadEnvFile(envPath)

			fmt.Printf("Platforms:\n\n")
			for _, id := range platform.KnownPlatforms() {
				cfg, configured := env.PlatformConfig(id)
				if configured {
					fmt.Printf("  - %s: configured (model: %s)\n", id, cfg.Model)
				} else {
					fmt.Printf("  - %s: not configured\n", id)
				}
			}

			return nil
		},
	}

	return cmd
}
