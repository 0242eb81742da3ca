package domain

import "time"

// Session captures the progress of one patient through the intake questionnaire.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Language is empty until the patient selects one.
	Language string `json:"language,omitempty"`

	// CurrentQuestion is 0 while awaiting the language, k while awaiting
	// the answer to question k, and N+1 once complete.
	CurrentQuestion int `json:"current_question"`

	// Answers maps the question index to the raw answer text.
	Answers map[int]string `json:"answers"`

	Complete bool `json:"is_complete"`

	// Sealed carries the encrypted answers when the store is wrapped
	// by the encryption middleware. Plain sessions leave it empty.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates a session awaiting its language selection.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		Answers:   make(map[int]string),
	}
}

// AwaitingLanguage reports whether the session is still at the language prompt.
func (s *Session) AwaitingLanguage() bool {
	return s.CurrentQuestion == 0 && !s.Complete
}

// Clone returns a deep copy so stores never share the answers map with callers.
func (s *Session) Clone() *Session {
	c := *s
	c.Answers = make(map[int]string, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	return &c
}
