package vocab

// Find returns the index of the case-insensitive match for word, or -1.
func Find(words []SavedWord, word string) int {
	key := Key(word)
	for i, w := range words {
		if w.Key() == key {
			return i
		}
	}
	return -1
}

// Contains reports whether word is saved, ignoring case.
func Contains(words []SavedWord, word string) bool {
	return Find(words, word) >= 0
}

// Toggle removes word when any casing of it is saved, and otherwise appends
// it with its original casing, the scheduler's initial state and the optional
// enrichment. The input slice is not modified. The boolean reports whether
// the word was added.
func Toggle(words []SavedWord, word, sessionID string, def *WordDefinition, sched *Scheduler) ([]SavedWord, bool, error) {
	if Key(word) == "" {
		return nil, false, ErrEmptyWord
	}

	if i := Find(words, word); i >= 0 {
		out := make([]SavedWord, 0, len(words)-1)
		out = append(out, words[:i]...)
		out = append(out, words[i+1:]...)
		return out, false, nil
	}

	entry := SavedWord{
		Word:      word,
		SessionID: sessionID,
		AddedAt:   sched.Now().UnixMilli(),
	}
	if def != nil {
		entry.Definition = def.Definition
		entry.Translation = def.Translation
		entry.Phonetic = def.Phonetic
	}
	entry = sched.Initial(entry)

	out := make([]SavedWord, 0, len(words)+1)
	out = append(out, words...)
	out = append(out, entry)
	return out, true, nil
}

// WordUpdate holds the fields to merge into a saved word. Nil fields are left
// unchanged.
type WordUpdate struct {
	Stage       *int    `json:"stage,omitempty"`
	NextReview  *int64  `json:"nextReview,omitempty"`
	Definition  *string `json:"definition,omitempty"`
	Translation *string `json:"translation,omitempty"`
	Phonetic    *string `json:"phonetic,omitempty"`
}

// FromDefinition builds an update carrying lookup enrichment.
func FromDefinition(def WordDefinition) WordUpdate {
	return WordUpdate{
		Definition:  &def.Definition,
		Translation: &def.Translation,
		Phonetic:    &def.Phonetic,
	}
}

// Update merges u into the saved word matching word. The word's key never
// changes.
func Update(words []SavedWord, word string, u WordUpdate) ([]SavedWord, error) {
	i := Find(words, word)
	if i < 0 {
		return nil, &NotFoundError{Word: word}
	}

	out := append([]SavedWord(nil), words...)
	w := out[i]
	if u.Stage != nil {
		w.Stage = *u.Stage
	}
	if u.NextReview != nil {
		w.NextReview = *u.NextReview
	}
	if u.Definition != nil {
		w.Definition = *u.Definition
	}
	if u.Translation != nil {
		w.Translation = *u.Translation
	}
	if u.Phonetic != nil {
		w.Phonetic = *u.Phonetic
	}
	out[i] = w
	return out, nil
}

// Replace stores an updated copy of a saved word in place.
func Replace(words []SavedWord, updated SavedWord) ([]SavedWord, error) {
	i := Find(words, updated.Word)
	if i < 0 {
		return nil, &NotFoundError{Word: updated.Word}
	}
	out := append([]SavedWord(nil), words...)
	out[i] = updated
	return out, nil
}

// Folder is the set of words saved from one session.
type Folder struct {
	SessionID string      `json:"sessionId"`
	Words     []SavedWord `json:"words"`
}

// Folders groups words by session in first-seen order.
func Folders(words []SavedWord) []Folder {
	index := map[string]int{}
	folders := []Folder{}
	for _, w := range words {
		i, ok := index[w.SessionID]
		if !ok {
			i = len(folders)
			index[w.SessionID] = i
			folders = append(folders, Folder{SessionID: w.SessionID})
		}
		folders[i].Words = append(folders[i].Words, w)
	}
	return folders
}
