package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docqa/config"
	"docqa/internal/usecase"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	factory, err := usecase.NewFactory(cfg)
	if err != nil {
		return err
	}

	st, err := factory.OpenStore(config.IndexDBPath(rootDir), nil)
	if err != nil {
		return err
	}
	defer st.Close()

	count, err := st.Count()
	if err != nil {
		return err
	}

	fmt.Printf("Backend:    %s\n", cfg.Store.Backend)
	fmt.Printf("Collection: %s\n", cfg.Store.Collection)
	fmt.Printf("Model:      %s\n", st.ModelID())
	fmt.Printf("Dimension:  %d\n", st.Dimension())
	fmt.Printf("Records:    %d\n", count)
	return nil
}
