package domain

import "time"

// OptionView is an answer choice as shown to players; the correct flag is never exposed.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is the presented form of a question.
type QuestionView struct {
	ID          string       `json:"id"`
	CategoryID  string       `json:"categoryId"`
	ImageURL    string       `json:"imageUrl"`
	Color       string       `json:"color"`
	Description string       `json:"description"`
	Tags        []string     `json:"tags"`
	Options     []OptionView `json:"options"`
}

// HasOption reports whether the view still shows the option.
func (v QuestionView) HasOption(id string) bool {
	for _, opt := range v.Options {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// GameStart is returned when a session begins.
type GameStart struct {
	SessionID               string        `json:"sessionId"`
	Question                *QuestionView `json:"question"`
	Score                   int           `json:"score"`
	TotalAvailableQuestions int           `json:"totalAvailableQuestions"`
	Lifeline50Used          bool          `json:"lifeline50Used"`
	LifelineSkipUsed        bool          `json:"lifelineSkipUsed"`
}

// AnswerSubmission models the scoring signal from clients.
type AnswerSubmission struct {
	SessionID        string
	QuestionID       string
	SelectedAnswerID string
	ResponseTimeMs   int64
	LifelineUsed     string
	QuestionColor    string
}

// AnswerResult summarizes the outcome of a submission.
type AnswerResult struct {
	IsCorrect         bool          `json:"isCorrect"`
	ScoreDelta        int           `json:"scoreDelta"`
	NewScore          int           `json:"newScore"`
	Streak            int           `json:"streak"`
	CorrectAnswerID   string        `json:"correctAnswerId"`
	Explanation       string        `json:"explanation,omitempty"`
	NextQuestion      *QuestionView `json:"nextQuestion"`
	CategoryCompleted bool          `json:"categoryCompleted"`
	UnlockedBadges    []BadgeUnlock `json:"unlockedBadges"`
}

// CompletionResult is returned by the category completion handler.
type CompletionResult struct {
	Success         bool         `json:"success"`
	BadgeAwarded    *BadgeUnlock `json:"badgeAwarded,omitempty"`
	AlreadyUnlocked bool         `json:"alreadyUnlocked"`
	CategoryName    string       `json:"categoryName"`
}

// BadgeUnlock reports one badge rule reached during an evaluation.
type BadgeUnlock struct {
	Badge         BadgeDefinition   `json:"badge"`
	Progress      UserBadgeProgress `json:"progress"`
	NewlyUnlocked bool              `json:"newlyUnlocked"`
	Message       string            `json:"message,omitempty"`
}

// GameEnd summarizes a finished session.
type GameEnd struct {
	SessionID       string        `json:"sessionId"`
	Score           int           `json:"score"`
	CorrectCount    int           `json:"correctCount"`
	WrongCount      int           `json:"wrongCount"`
	DurationSeconds int           `json:"durationSeconds"`
	EndedAt         time.Time     `json:"endedAt"`
	UnlockedBadges  []BadgeUnlock `json:"unlockedBadges"`
}
