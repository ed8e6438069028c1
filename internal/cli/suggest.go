package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/juliuspor/Harmony/internal/config"
	"github.com/juliuspor/Harmony/internal/provider"
	"github.com/juliuspor/Harmony/internal/suggest"
	"github.com/spf13/cobra"
)

var (
	suggestName string
	suggestGoal string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <source>...",
	Short: "Draft campaign invitations for each collection channel",
	Long:  "Generates a tailored invitation message per source channel (e.g. slack, email, whatsapp) asking people to contribute their opinion.",
	Args:  cobra.MinimumNArgs(1),
	Run:   runSuggest,
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestName, "name", "n", "", "campaign name")
	suggestCmd.Flags().StringVarP(&suggestGoal, "goal", "g", "", "what the campaign wants to find out")
	suggestCmd.MarkFlagRequired("name")
	suggestCmd.MarkFlagRequired("goal")
}

func runSuggest(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	prov := provider.NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.APIBase, cfg.Model.Name)
	svc := suggest.NewService(prov)

	messages, err := svc.CampaignMessages(context.Background(), suggestName, suggestGoal, args)
	if err != nil {
		fmt.Printf("Suggestion error: %v\n", err)
		os.Exit(1)
	}

	sources := make([]string, 0, len(messages))
	for source := range messages {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		fmt.Printf("── %s ──\n%s\n\n", source, messages[source])
	}
}
