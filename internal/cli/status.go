package cli

import (
	"fmt"
	"os"

	"github.com/juliuspor/Harmony/internal/config"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ Harmony Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 Harmony Status")
		fmt.Printf("Version: %s\n", version)

		configPath, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Println("Config:  ✓ Found (" + configPath + ")")
			} else {
				fmt.Println("Config:  ✗ Not found (defaults will be used)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Println("API Key: ? Unable to load config")
			return
		}
		if cfg.Providers.OpenAI.APIKey != "" {
			fmt.Println("API Key: ✓ Found")
		} else {
			fmt.Println("API Key: ✗ Not found (set OPENAI_API_KEY)")
		}

		dbPath := config.DBPath(cfg)
		if _, err := os.Stat(dbPath); err == nil {
			fmt.Println("Store:   ✓ Found (" + dbPath + ")")
		} else {
			fmt.Println("Store:   ✗ Not found (created on first use)")
		}

		if cfg.Ingest.Kafka.Enabled {
			fmt.Println("Kafka:   ✓ Enabled (" + cfg.Ingest.Kafka.Brokers + ")")
		} else {
			fmt.Println("Kafka:   ✗ Disabled")
		}

		fmt.Println("Status:  Ready")
	},
}
