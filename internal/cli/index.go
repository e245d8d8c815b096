package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docqa/config"
	"docqa/internal/adapter/fs"
	"docqa/internal/usecase"
)

var indexRecreate bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a document corpus for retrieval",
	Long: `Index plain-text and PDF documents under the given directory. The index
is stored in .docqa/index.db within the corpus root.

Indexing is a one-shot batch job: run it to completion before asking
questions. Re-run with --recreate to wipe and rebuild the index.

Examples:
  docqa index .                   # Index current directory, append mode
  docqa index ./corpus --recreate # Wipe and rebuild`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexRecreate, "recreate", false, "wipe and rebuild the index instead of appending")
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := rootDir
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	if err := config.EnsureDataDir(path); err != nil {
		return fmt.Errorf("failed to create .docqa directory: %w", err)
	}

	factory, err := usecase.NewFactory(cfg)
	if err != nil {
		return err
	}

	recreate := cfg.Store.Recreate
	if cmd.Flags().Changed("recreate") {
		recreate = indexRecreate
	}

	st, err := factory.OpenStore(config.IndexDBPath(path), &recreate)
	if err != nil {
		return err
	}
	defer st.Close()

	indexer, err := factory.Indexer(st)
	if err != nil {
		return err
	}

	walker := fs.NewWalker(cfg.Corpus.Includes, cfg.Corpus.Excludes)
	sources, err := walker.Walk(path)
	if err != nil {
		return fmt.Errorf("failed to scan corpus: %w", err)
	}
	if len(sources) == 0 {
		fmt.Println("No sources found.")
		return nil
	}

	fmt.Printf("Indexing %d sources from %s...\n", len(sources), path)

	bar := progressbar.NewOptions(len(sources),
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	indexer.Progress = func(done, total int) {
		bar.Set(done)
	}

	result, err := indexer.Run(cmd.Context(), sources)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d document chunks from %d sources.\n", result.DocumentsWritten, result.SourcesIndexed)
	if result.SourcesSkipped > 0 {
		fmt.Printf("Skipped %d sources:\n", result.SourcesSkipped)
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	return nil
}
