package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/auto-qa/internal/teams"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams and their application context",
}

var teamAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a team",
	Long:  `Register a team. Its context is used as the application context of every generation request tagged with the team.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamAdd,
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all teams",
	RunE:  runTeamList,
}

func init() {
	teamAddCmd.Flags().String("description", "", "team description")
	teamAddCmd.Flags().String("context", "", "application context used for generation")
	teamAddCmd.Flags().String("tech-stack", "", "technology stack")
	teamAddCmd.Flags().String("contacts", "", "key contacts")

	teamCmd.AddCommand(teamAddCmd, teamListCmd)
	rootCmd.AddCommand(teamCmd)
}

func runTeamAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	description, _ := cmd.Flags().GetString("description")
	contextInfo, _ := cmd.Flags().GetString("context")
	techStack, _ := cmd.Flags().GetString("tech-stack")
	contacts, _ := cmd.Flags().GetString("contacts")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	t := &teams.Team{
		Name:        args[0],
		Description: description,
		ContextInfo: contextInfo,
		TechStack:   techStack,
		KeyContacts: contacts,
	}
	if err := a.teams.CreateTeam(ctx, t); err != nil {
		return err
	}

	fmt.Printf("Team %q registered with id %d\n", t.Name, t.ID)
	return nil
}

func runTeamList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	list, err := a.teams.ListTeams(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No teams registered. Use `autoqa team add <name>` to add one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTECH STACK\tDESCRIPTION")
	for _, t := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Name, t.TechStack, t.Description)
	}
	return w.Flush()
}
