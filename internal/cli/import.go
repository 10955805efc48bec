package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexiqai/echolisten/internal/media"
	"github.com/lexiqai/echolisten/internal/study"
	"github.com/lexiqai/echolisten/internal/transcript"
)

var (
	importMethod string
	importRule   float64
	importTitle  string
)

var importCmd = &cobra.Command{
	Use:   "import <audio-file>",
	Short: "Transcribe a recording and add it to the library",
	Long: `Transcribe a recording with the configured ASR provider, cut the
transcript into segments and store the session.

Examples:
  echoctl import interview.mp3
  echoctl import lecture.wav --method DURATION --rule 2
  echoctl import podcast.mp3 --method PARAGRAPH --title "Episode 12"`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importMethod, "method", "m", "", "slicing method: DURATION, TURNS or PARAGRAPH (default $SLICE_METHOD)")
	importCmd.Flags().Float64VarP(&importRule, "rule", "r", 0, "minutes for DURATION, turns for TURNS (default $SLICE_RULE_VALUE)")
	importCmd.Flags().StringVarP(&importTitle, "title", "t", "", "session title (default: file name)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	src := args[0]
	if !media.IsAudio(src) {
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(src))
	}

	method := cfg.Method()
	if importMethod != "" {
		m, err := transcript.ParseMethod(importMethod)
		if err != nil {
			return err
		}
		method = m
	}
	rule := cfg.SliceRuleValue
	if cmd.Flags().Changed("rule") {
		rule = importRule
	}

	svc, err := openService(withTranscriber)
	if err != nil {
		return err
	}
	defer svc.close()

	// keep a copy next to server uploads so the player can stream it
	id := uuid.New().String()
	dest := filepath.Join(cfg.AudioDir, id+strings.ToLower(filepath.Ext(src)))
	if err := copyFile(src, dest); err != nil {
		return fmt.Errorf("failed to store audio: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	title := importTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}

	fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("Transcribing "+filepath.Base(src)+"..."))
	sess, err := svc.Import(ctx, study.ImportRequest{
		ID:        id,
		AudioPath: dest,
		Title:     title,
		Method:    method,
		RuleValue: rule,
	})
	if err != nil {
		os.Remove(dest)
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, okStyle.Render("✓ Imported ")+titleStyle.Render(sess.Title))
	fmt.Fprintf(out, "  id:        %s\n", sess.ID)
	fmt.Fprintf(out, "  segments:  %d (%s)\n", len(sess.Segments), method)
	fmt.Fprintf(out, "  speakers:  %d blocks\n", len(sess.Blocks()))
	fmt.Fprintf(out, "  duration:  %s\n", clock(sess.Duration))
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
