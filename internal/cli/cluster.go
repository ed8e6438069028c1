package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var clusterProjectFlag string

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster a project's submissions into opinion groups",
	Run:   runCluster,
}

func init() {
	clusterCmd.Flags().StringVarP(&clusterProjectFlag, "project", "p", "default", "project to cluster")
}

func runCluster(cmd *cobra.Command, args []string) {
	stk, err := openStack()
	if err != nil {
		fmt.Printf("Startup error: %v\n", err)
		os.Exit(1)
	}
	defer stk.close()

	result, err := stk.svc.Cluster(context.Background(), clusterProjectFlag)
	if err != nil {
		fmt.Printf("Clustering error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d opinion group(s) (silhouette %.3f)\n", result.NumGroups, result.Silhouette)
	for i, group := range result.Clusters {
		fmt.Printf("\nGroup %d (%d submission(s)):\n", i+1, len(group))
		for _, text := range group {
			fmt.Printf("  - %s\n", text)
		}
	}
}
