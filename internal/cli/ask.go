package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docqa/config"
	"docqa/internal/usecase"
)

var (
	askQuestion string
	askAPIKey   string
	askTopK     int
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question about the indexed corpus",
	Long: `Ask a natural-language question. The question is embedded, the most
similar chunks are retrieved, and the generation provider composes an answer
grounded in them.

The API key is the generation credential for this call only. It is never
read from the environment or the config file.

Examples:
  docqa ask -q "How old was Leonardo when he died?" --api-key sk-...
  docqa ask -q "What is discussed?" --api-key sk-... --top-k 10`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask (required)")
	askCmd.Flags().StringVar(&askAPIKey, "api-key", "", "generation provider API key for this call (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	askCmd.MarkFlagRequired("question")
	askCmd.MarkFlagRequired("api-key")
}

func runAsk(cmd *cobra.Command, args []string) error {
	dbPath := config.IndexDBPath(rootDir)
	if cfg.Store.Backend == "bolt" {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("no index found. Run 'docqa index' first")
		}
	}

	if askTopK > 0 {
		cfg.Retrieve.TopK = askTopK
	}

	factory, err := usecase.NewFactory(cfg)
	if err != nil {
		return err
	}

	st, err := factory.OpenStore(dbPath, nil)
	if err != nil {
		return err
	}
	defer st.Close()

	query, err := factory.Query(st)
	if err != nil {
		return err
	}

	answer, err := query.Ask(cmd.Context(), askQuestion, askAPIKey)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}
