package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/juliuspor/Harmony/internal/cli.version=1.2.3"
	version = "0.4.1"
	logo    = "\n" +
		"  _   _\n" +
		" | | | | __ _ _ __ _ __ ___   ___  _ __  _   _\n" +
		" | |_| |/ _` | '__| '_ ` _ \\ / _ \\| '_ \\| | | |\n" +
		" |  _  | (_| | |  | | | | | | (_) | | | | |_| |\n" +
		" |_| |_|\\__,_|_|  |_| |_| |_|\\___/|_| |_|\\__, |\n" +
		"                                         |___/\n"
)

var rootCmd = &cobra.Command{
	Use:   "harmony",
	Short: "Harmony - Collective opinion clustering and debate",
	Long:  color.CyanString(logo) + "\nClusters free-text submissions, debates them with simulated agents, and scores consensus.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(debateCmd)
	rootCmd.AddCommand(suggestCmd)
}
