package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shopbench",
	Short: "Shopping benchmark harness for generative AI platforms",
	Long: `shopbench drives multi-step shopping scenarios against generative AI
platforms (ChatGPT, Claude, Gemini, Copilot, Perplexity), scores each response
with an LLM judge against product ground truth, and writes an XLSX report that
is kept consistent after every completed step.

Benchmark runs can be started from the CLI ('shopbench run') or through the
MCP server ('shopbench serve').`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	},
}

var (
	buildCommit = "unknown"
	buildDate   = "unknown"
)

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// SetBuildInfo sets the commit and build date for the version command.
func SetBuildInfo(commit, date string) {
	buildCommit = commit
	buildDate = date
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "shopbench version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newServeCmd())

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("env", ".env", "Path to the credentials env file")
	rootCmd.PersistentFlags().String("datasets", "", "External dataset registry file (optional)")
	rootCmd.PersistentFlags().String("reports-dir", "reports", "Directory for generated reports")
}
