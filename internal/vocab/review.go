package vocab

// ReviewSession walks a snapshot of the due words taken when it started.
// Words that become due while it runs are not added.
type ReviewSession struct {
	sched *Scheduler
	queue []SavedWord
	pos   int
	known int
}

// NewReviewSession snapshots the words currently due.
func NewReviewSession(sched *Scheduler, words []SavedWord) *ReviewSession {
	return &ReviewSession{
		sched: sched,
		queue: sched.Due(words),
	}
}

// Len is the number of cards in the session.
func (r *ReviewSession) Len() int {
	return len(r.queue)
}

// Position is the zero-based index of the current card.
func (r *ReviewSession) Position() int {
	return r.pos
}

// Known counts cards answered KNOWN so far.
func (r *ReviewSession) Known() int {
	return r.known
}

// Done reports whether every card has been answered.
func (r *ReviewSession) Done() bool {
	return r.pos >= len(r.queue)
}

// Current returns the card being shown.
func (r *ReviewSession) Current() (SavedWord, bool) {
	if r.Done() {
		return SavedWord{}, false
	}
	return r.queue[r.pos], true
}

// Answer schedules the current card and advances. The returned word carries
// the new stage and review time for the caller to persist.
func (r *ReviewSession) Answer(outcome Outcome) (SavedWord, error) {
	current, ok := r.Current()
	if !ok {
		return SavedWord{}, ErrReviewFinished
	}
	updated, err := r.sched.Review(current, outcome)
	if err != nil {
		return SavedWord{}, err
	}
	if outcome == Known {
		r.known++
	}
	r.pos++
	return updated, nil
}
