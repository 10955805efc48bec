package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lexiqai/echolisten/internal/vocab"
)

var (
	cardStyle = lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// reviewSaver persists an answered card.
type reviewSaver interface {
	SaveReview(ctx context.Context, reviewed vocab.SavedWord, outcome vocab.Outcome) error
}

type reviewKeyMap struct {
	Reveal key.Binding
	Known  key.Binding
	Forgot key.Binding
	Quit   key.Binding
}

func defaultReviewKeyMap() reviewKeyMap {
	return reviewKeyMap{
		Reveal: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "reveal"),
		),
		Known: key.NewBinding(
			key.WithKeys("k", "right"),
			key.WithHelp("k", "known"),
		),
		Forgot: key.NewBinding(
			key.WithKeys("f", "left"),
			key.WithHelp("f", "forgot"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "quit"),
		),
	}
}

// savedMsg reports the result of persisting one answer.
type savedMsg struct {
	word string
	err  error
}

type reviewModel struct {
	ctx      context.Context
	saver    reviewSaver
	review   *vocab.ReviewSession
	keys     reviewKeyMap
	revealed bool
	saving   bool
	saved    int
	err      error
}

func newReviewModel(ctx context.Context, saver reviewSaver, review *vocab.ReviewSession) reviewModel {
	return reviewModel{
		ctx:    ctx,
		saver:  saver,
		review: review,
		keys:   defaultReviewKeyMap(),
	}
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.err = fmt.Errorf("failed to save %q: %w", msg.word, msg.err)
			return m, tea.Quit
		}
		m.saved++
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		// one answer in flight at a time
		if m.saving {
			return m, nil
		}
		if m.review.Done() {
			return m, tea.Quit
		}

		switch {
		case key.Matches(msg, m.keys.Reveal):
			m.revealed = true
			return m, nil
		case key.Matches(msg, m.keys.Known):
			return m.answer(vocab.Known)
		case key.Matches(msg, m.keys.Forgot):
			return m.answer(vocab.Forgot)
		}
	}
	return m, nil
}

func (m reviewModel) answer(outcome vocab.Outcome) (tea.Model, tea.Cmd) {
	updated, err := m.review.Answer(outcome)
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.revealed = false
	m.saving = true
	ctx, saver := m.ctx, m.saver
	return m, func() tea.Msg {
		return savedMsg{word: updated.Word, err: saver.SaveReview(ctx, updated, outcome)}
	}
}

func (m reviewModel) View() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(errStyle.Render("Error: "+m.err.Error()) + "\n")
		return b.String()
	}

	if m.review.Done() {
		b.WriteString(titleStyle.Render("Review complete") + "\n\n")
		fmt.Fprintf(&b, "  %s known, %d to practise again\n",
			okStyle.Render(fmt.Sprintf("%d", m.review.Known())),
			m.review.Len()-m.review.Known())
		if m.saving {
			b.WriteString(dimStyle.Render("  saving...") + "\n")
		} else {
			b.WriteString("\n" + dimStyle.Render("Press any key to exit") + "\n")
		}
		return b.String()
	}

	card, _ := m.review.Current()
	b.WriteString(dimStyle.Render(fmt.Sprintf("Card %d/%d · stage %d", m.review.Position()+1, m.review.Len(), card.Stage)) + "\n")

	body := titleStyle.Render(card.Word)
	if m.revealed {
		if card.Phonetic != "" {
			body += "  " + dimStyle.Render(card.Phonetic)
		}
		if card.Definition != "" {
			body += "\n\n" + card.Definition
		}
		if card.Translation != "" {
			body += "\n" + accentStyle.Render(card.Translation)
		}
		if card.Definition == "" && card.Translation == "" {
			body += "\n\n" + dimStyle.Render("no definition saved, try 'echoctl lookup "+card.Word+"'")
		}
	}
	b.WriteString(cardStyle.Render(body) + "\n\n")

	help := []string{m.keys.Known.Help().Key + " " + m.keys.Known.Help().Desc, m.keys.Forgot.Help().Key + " " + m.keys.Forgot.Help().Desc}
	if !m.revealed {
		help = append([]string{m.keys.Reveal.Help().Key + " " + m.keys.Reveal.Help().Desc}, help...)
	}
	help = append(help, m.keys.Quit.Help().Key+" "+m.keys.Quit.Help().Desc)
	b.WriteString(dimStyle.Render(strings.Join(help, " • ")) + "\n")
	return b.String()
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review due words with spaced repetition flash cards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.close()

		ctx := context.Background()
		review, err := svc.StartReview(ctx)
		if err != nil {
			return err
		}
		if review.Len() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("Nothing due. Come back later."))
			return nil
		}

		final, err := tea.NewProgram(newReviewModel(ctx, svc, review)).Run()
		if err != nil {
			return err
		}
		m := final.(reviewModel)
		if m.err != nil {
			return m.err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reviewed %d of %d words.\n", m.saved, review.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
