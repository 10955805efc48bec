package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lexiqai/echolisten/internal/session"
)

var (
	sessionsQuery string
	exportFormat  string
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"ls"},
	Short:   "Manage the session library",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.close()

		sessions, err := svc.SearchSessions(context.Background(), sessionsQuery)
		if err != nil {
			return err
		}
		printSessions(cmd.OutOrStdout(), sessions)
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a session transcript grouped by speaker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.close()

		sess, err := svc.Session(context.Background(), args[0])
		if err != nil {
			return err
		}
		printTranscript(cmd.OutOrStdout(), sess)
		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a session with its segments as YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.close()

		sess, err := svc.Session(context.Background(), args[0])
		if err != nil {
			return err
		}
		return exportSession(cmd.OutOrStdout(), sess, exportFormat)
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session (saved words are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.close()

		if err := svc.DeleteSession(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("✓ Deleted "+args[0]))
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().StringVarP(&sessionsQuery, "query", "q", "", "filter by title or subtitle")
	sessionsExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "output format: yaml or json")

	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsExportCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func printSessions(w io.Writer, sessions []session.AudioSession) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No sessions yet. Import one with 'echoctl import <file>'."))
		return
	}
	for _, s := range sessions {
		played := "never played"
		if s.LastPlayed > 0 {
			played = "played " + s.PlayedAt().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s  %s\n", titleStyle.Render(s.Title), dimStyle.Render(s.ID))
		fmt.Fprintf(w, "  %s · %s · %s\n", s.Subtitle, clock(s.Duration), played)
	}
}

func printTranscript(w io.Writer, sess session.AudioSession) {
	fmt.Fprintln(w, titleStyle.Render(sess.Title))
	fmt.Fprintln(w, dimStyle.Render(sess.Subtitle))
	for _, block := range sess.Blocks() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, accentStyle.Render(fmt.Sprintf("Speaker %d", block.Speaker)))
		for _, seg := range block.Segments {
			fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("["+clock(seg.StartTime)+"]"), seg.Text)
		}
	}
}

func exportSession(w io.Writer, sess session.AudioSession, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sess); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sess)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}
