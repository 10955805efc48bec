package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexiqai/echolisten/internal/vocab"
)

var (
	toggleSession string
	lookupContext string
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Manage saved vocabulary",
}

var wordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved words grouped by session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.close()

		folders, err := svc.Folders(context.Background())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(folders) == 0 {
			fmt.Fprintln(out, dimStyle.Render("No saved words."))
			return nil
		}
		for _, f := range folders {
			label := f.SessionID
			if sess, err := svc.Session(context.Background(), f.SessionID); err == nil {
				label = sess.Title
			}
			fmt.Fprintln(out, accentStyle.Render(label))
			printWords(out, f.Words)
		}
		return nil
	},
}

var wordsToggleCmd = &cobra.Command{
	Use:   "toggle <word>",
	Short: "Save a word, or remove it if already saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.close()

		res, err := svc.ToggleWord(context.Background(), args[0], toggleSession, nil)
		if err != nil {
			return err
		}
		if res.Added {
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("✓ Saved ")+res.Word.Word)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("Removed ")+res.Word.Word)
		}
		return nil
	},
}

var wordsDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List words due for review",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.close()

		due, err := svc.DueWords(context.Background())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(due) == 0 {
			fmt.Fprintln(out, dimStyle.Render("Nothing due. Come back later."))
			return nil
		}
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d words due", len(due))))
		printWords(out, due)
		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <word>",
	Short: "Define a word with the configured lookup provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(withDefiner)
		if err != nil {
			return err
		}
		defer svc.close()

		def, err := svc.Lookup(context.Background(), args[0], lookupContext)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s\n", titleStyle.Render(def.Word), dimStyle.Render(def.Phonetic))
		fmt.Fprintln(out, "  "+def.Definition)
		if def.Translation != "" {
			fmt.Fprintln(out, "  "+accentStyle.Render(def.Translation))
		}
		if def.Example != "" {
			fmt.Fprintln(out, dimStyle.Render("  e.g. "+def.Example))
		}
		return nil
	},
}

func init() {
	wordsToggleCmd.Flags().StringVarP(&toggleSession, "session", "s", "", "session the word was heard in")
	lookupCmd.Flags().StringVar(&lookupContext, "sentence", "", "sentence the word appeared in")

	wordsCmd.AddCommand(wordsListCmd, wordsToggleCmd, wordsDueCmd)
	rootCmd.AddCommand(wordsCmd, lookupCmd)
}

func printWords(w io.Writer, words []vocab.SavedWord) {
	for _, word := range words {
		next := time.UnixMilli(word.NextReview).Format(time.DateOnly)
		line := fmt.Sprintf("  %-18s stage %d  next %s", word.Word, word.Stage, next)
		if word.Translation != "" {
			line += "  " + word.Translation
		}
		fmt.Fprintln(w, line)
	}
}
