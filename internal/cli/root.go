package cli

import (
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"docqa/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Document QA - index a corpus and answer questions grounded in it",
	Long: `docqa indexes a document corpus (plain text and PDF) into a local vector
index and answers natural-language questions by retrieving the most similar
chunks and asking a language model to compose a grounded answer.

Example usage:
  docqa index ./corpus                          # Build the index
  docqa ask -q "Who is interviewed?" --api-key sk-...   # Ask a question
  docqa stats                                   # Inspect the index`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log.DefaultLogger = log.Logger{
			Level:  log.ParseLevel(cfg.Logging.Level),
			Writer: &log.ConsoleWriter{ColorOutput: true},
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docqa.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "corpus root directory (default is current directory)")
}
