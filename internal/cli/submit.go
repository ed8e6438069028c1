package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/juliuspor/Harmony/internal/service"
	"github.com/spf13/cobra"
)

var (
	submitProject string
	submitUser    string
)

var submitCmd = &cobra.Command{
	Use:   "submit <text>",
	Short: "Add a submission to a project",
	Args:  cobra.MinimumNArgs(1),
	Run:   runSubmit,
}

var clearProject string

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all submissions from a project",
	Run:   runClear,
}

func init() {
	submitCmd.Flags().StringVarP(&submitProject, "project", "p", "default", "project to submit to")
	submitCmd.Flags().StringVarP(&submitUser, "user", "u", "", "user identifier")
	clearCmd.Flags().StringVarP(&clearProject, "project", "p", "default", "project to clear")
}

func runSubmit(cmd *cobra.Command, args []string) {
	stk, err := openStack()
	if err != nil {
		fmt.Printf("Startup error: %v\n", err)
		os.Exit(1)
	}
	defer stk.close()

	content := strings.Join(args, " ")
	ids, err := stk.svc.AddSubmissions(context.Background(), submitProject, []service.SubmissionInput{
		{Content: content, UserID: submitUser},
	})
	if err != nil {
		fmt.Printf("Submit error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Stored submission %s in project %s\n", ids[0], submitProject)
}

func runClear(cmd *cobra.Command, args []string) {
	stk, err := openStack()
	if err != nil {
		fmt.Printf("Startup error: %v\n", err)
		os.Exit(1)
	}
	defer stk.close()

	count, err := stk.svc.ClearProject(context.Background(), clearProject)
	if err != nil {
		fmt.Printf("Clear error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("🗑️ Removed %d submission(s) from project %s\n", count, clearProject)
}
