package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/juliuspor/Harmony/internal/store"
	"github.com/spf13/cobra"
)

var debateCmd = &cobra.Command{
	Use:   "debate",
	Short: "Run and inspect agent debates",
}

var debateStartProject string

var debateStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run a debate over a project's opinion groups",
	Run:   runDebateStart,
}

var debateListProject string

var debateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List debates for a project",
	Run:   runDebateList,
}

var debateStatusCmd = &cobra.Command{
	Use:   "status <debate-id>",
	Short: "Show the transcript and status of a debate",
	Args:  cobra.ExactArgs(1),
	Run:   runDebateStatus,
}

var debateConsensusCmd = &cobra.Command{
	Use:   "consensus <debate-id>",
	Short: "Show the consensus analysis of a debate",
	Args:  cobra.ExactArgs(1),
	Run:   runDebateConsensus,
}

func init() {
	debateStartCmd.Flags().StringVarP(&debateStartProject, "project", "p", "default", "project to debate")
	debateListCmd.Flags().StringVarP(&debateListProject, "project", "p", "default", "project to list")
	debateCmd.AddCommand(debateStartCmd)
	debateCmd.AddCommand(debateListCmd)
	debateCmd.AddCommand(debateStatusCmd)
	debateCmd.AddCommand(debateConsensusCmd)
}

func runDebateStart(cmd *cobra.Command, args []string) {
	printHeader("🗣️ Harmony Debate")

	stk, err := openStack()
	if err != nil {
		fmt.Printf("Startup error: %v\n", err)
		os.Exit(1)
	}
	defer stk.close()

	ctx := context.Background()
	debateID, err := stk.store.CreateDebate(ctx, debateStartProject, store.StatusPending)
	if err != nil {
		fmt.Printf("Debate error: %v\n", err)
		os.Exit(1)
	}
	done, err := stk.runner.Start(ctx, debateStartProject, debateID, nil)
	if err != nil {
		fmt.Printf("Debate error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Debate %s started, waiting for completion...\n\n", debateID)
	<-done

	view, err := stk.svc.GetDebate(ctx, debateID)
	if err != nil {
		fmt.Printf("Debate error: %v\n", err)
		os.Exit(1)
	}
	printTranscript(view.Messages)
	fmt.Println()
	printDebate(view.Debate)
	if view.Debate.Status == store.StatusCancelled {
		os.Exit(1)
	}
}

func runDebateList(cmd *cobra.Command, args []string) {
	stk, err := openStack()
	if err != nil {
		fmt.Printf("Startup error: %v\n", err)
		os.Exit(1)
	}
	defer stk.close()

	debates, err := stk.svc.ListDebates(context.Background(), debateListProject)
	if err != nil {
		fmt.Printf("Debate error: %v\n", err)
		os.Exit(1)
	}
	if len(debates) == 0 {
		fmt.Printf("No debates found for project %s\n", debateListProject)
		return
	}
	for _, d := range debates {
		score := "-"
		if d.ConsensusScore != nil {
			score = fmt.Sprintf("%.2f", *d.ConsensusScore)
		}
		fmt.Printf("%s  %-10s  score=%s  %s\n", d.DebateID, d.Status, score, d.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func runDebateStatus(cmd *cobra.Command, args []string) {
	stk, err := openStack()
	if err != nil {
		fmt.Printf("Startup error: %v\n", err)
		os.Exit(1)
	}
	defer stk.close()

	view, err := stk.svc.GetDebate(context.Background(), args[0])
	if err != nil {
		fmt.Printf("Debate error: %v\n", err)
		os.Exit(1)
	}

	printDebate(view.Debate)
	fmt.Printf("\nAgents (%d):\n", len(view.Agents))
	for _, a := range view.Agents {
		fmt.Printf("  %s (%s): %s\n", a.AgentName, a.AgentID, a.PersonaSummary)
	}
	fmt.Println()
	printTranscript(view.Messages)
	if len(view.Interventions) > 0 {
		fmt.Printf("\nInterventions (%d):\n", len(view.Interventions))
		for _, iv := range view.Interventions {
			fmt.Printf("  [%s] %s\n", iv.Type, iv.Reason)
		}
	}
}

func runDebateConsensus(cmd *cobra.Command, args []string) {
	stk, err := openStack()
	if err != nil {
		fmt.Printf("Startup error: %v\n", err)
		os.Exit(1)
	}
	defer stk.close()

	view, err := stk.svc.GetConsensus(context.Background(), args[0])
	if err != nil {
		fmt.Printf("Consensus error: %v\n", err)
		os.Exit(1)
	}

	c := view.Consensus
	fmt.Printf("Consensus score:    %.2f / 100\n", c.ConsensusScore)
	fmt.Printf("Semantic alignment: %.2f\n", c.SemanticAlignment*100)
	fmt.Printf("Agreement ratio:    %.2f\n", c.AgreementRatio*100)
	fmt.Printf("Convergence:        %.2f\n", c.ConvergenceScore*100)
	fmt.Printf("Resolution rate:    %.2f\n", c.ResolutionRate*100)
	fmt.Printf("Sentiment:          %s\n", c.Sentiment)

	if view.Matrix != nil && len(view.Matrix.AgentIDs) > 0 {
		fmt.Println("\nPairwise alignment:")
		for i, row := range view.Matrix.Matrix {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = fmt.Sprintf("%.2f", v)
			}
			fmt.Printf("  %-20s %s\n", view.Matrix.AgentNames[i], strings.Join(cells, "  "))
		}
	}

	if view.Summary != nil {
		printList := func(title string, items []string) {
			if len(items) == 0 {
				return
			}
			fmt.Printf("\n%s:\n", title)
			for _, item := range items {
				fmt.Printf("  - %s\n", item)
			}
		}
		printList("Key alignments", view.Summary.KeyAlignments)
		printList("Key insights", view.Summary.KeyInsights)
		printList("Pro arguments", view.Summary.ProArguments)
		printList("Con arguments", view.Summary.ConArguments)
	}
}

func printDebate(d store.Debate) {
	fmt.Printf("Debate %s\n", d.DebateID)
	fmt.Printf("Project: %s\n", d.ProjectID)
	fmt.Printf("Status:  %s\n", d.Status)
	if d.ConsensusScore != nil {
		fmt.Printf("Score:   %.2f / 100\n", *d.ConsensusScore)
	}
	if d.ErrorText != "" {
		fmt.Printf("Error:   %s\n", d.ErrorText)
	}
}

func printTranscript(messages []store.Message) {
	round := 0
	for _, m := range messages {
		if m.RoundNumber != round {
			round = m.RoundNumber
			fmt.Printf("--- Round %d ---\n", round)
		}
		fmt.Printf("[%s]: %s\n", m.AgentName, m.Content)
	}
}
