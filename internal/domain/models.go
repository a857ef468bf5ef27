package domain

import "time"

// Role is the access level of a user.
type Role string

const (
	RoleEmployee     Role = "employee"
	RoleAdmin        Role = "admin"
	RoleStoreManager Role = "store_manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleAdmin, RoleStoreManager:
		return true
	}
	return false
}

// User is a player or back-office account.
type User struct {
	ID                 string     `json:"id" bun:"id,pk"`
	Email              string     `json:"email" bun:"email,notnull,unique"`
	DisplayName        string     `json:"displayName" bun:"display_name,notnull"`
	PasswordHash       string     `json:"-" bun:"password_hash,notnull"`
	Role               Role       `json:"role" bun:"role,notnull"`
	StoreCode          string     `json:"storeCode" bun:"store_code"`
	LoginStreak        int        `json:"loginStreak" bun:"login_streak,notnull"`
	LongestLoginStreak int        `json:"longestLoginStreak" bun:"longest_login_streak,notnull"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty" bun:"last_login_at"`
	TotalAnswered      int        `json:"totalAnswered" bun:"total_answered,notnull"`
	TotalCorrect       int        `json:"totalCorrect" bun:"total_correct,notnull"`
	TotalPoints        int        `json:"totalPoints" bun:"total_points,notnull"`
	TrainingSeconds    int        `json:"trainingSeconds" bun:"training_seconds,notnull"`
	ActiveBadgeCode    string     `json:"activeBadgeCode,omitempty" bun:"active_badge_code"`
	CreatedAt          time.Time  `json:"createdAt" bun:"created_at,notnull"`
}

// UserStatsDelta is an additive change to a user's cumulative counters.
type UserStatsDelta struct {
	Answered        int
	Correct         int
	Points          int
	TrainingSeconds int
}

// QuizCategory groups questions. IsActive controls admin visibility, IsQuizActive controls play.
type QuizCategory struct {
	ID                  string    `json:"id" bun:"id,pk"`
	Name                string    `json:"name" bun:"name,notnull"`
	Slug                string    `json:"slug" bun:"slug,notnull,unique"`
	IsActive            bool      `json:"isActive" bun:"is_active,notnull"`
	IsQuizActive        bool      `json:"isQuizActive" bun:"is_quiz_active,notnull"`
	IsAllCategories     bool      `json:"isAllCategories" bun:"is_all_categories,notnull"`
	CompletionBadgeCode string    `json:"completionBadgeCode,omitempty" bun:"completion_badge_code"`
	SortOrder           int       `json:"sortOrder" bun:"sort_order,notnull"`
	CreatedAt           time.Time `json:"createdAt" bun:"created_at,notnull"`
}

// Playable reports whether a game may be started directly on the category.
func (c QuizCategory) Playable() bool {
	return c.IsActive && c.IsQuizActive
}

// QuestionImage is one product shot of a question, tagged by color.
type QuestionImage struct {
	URL       string `json:"url"`
	Color     string `json:"color"`
	IsPrimary bool   `json:"isPrimary"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// QuestionItem is a fit question with exactly one correct option.
type QuestionItem struct {
	ID          string          `json:"id" bun:"id,pk"`
	CategoryID  string          `json:"categoryId" bun:"category_id,notnull"`
	Images      []QuestionImage `json:"images" bun:"images,type:jsonb,notnull"`
	Description string          `json:"description" bun:"description"`
	Explanation string          `json:"explanation" bun:"explanation"`
	Tags        []string        `json:"tags" bun:"tags,type:jsonb,notnull"`
	Gender      string          `json:"gender" bun:"gender"`
	FitCategory string          `json:"fitCategory" bun:"fit_category"`
	Options     []Option        `json:"options" bun:"options,type:jsonb,notnull"`
	IsActive    bool            `json:"isActive" bun:"is_active,notnull"`
	CreatedAt   time.Time       `json:"createdAt" bun:"created_at,notnull"`
}

// CorrectOption returns the option flagged correct.
func (q QuestionItem) CorrectOption() (Option, bool) {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt, true
		}
	}
	return Option{}, false
}

// OptionByID looks up an option of the question.
func (q QuestionItem) OptionByID(id string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// HasTag reports whether the question carries the tag.
func (q QuestionItem) HasTag(tag string) bool {
	for _, t := range q.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// GameSession is one play-through of a category by a user.
type GameSession struct {
	ID                string     `json:"id" bun:"id,pk"`
	UserID            string     `json:"userId" bun:"user_id,notnull"`
	CategoryID        string     `json:"categoryId" bun:"category_id,notnull"`
	Score             int        `json:"score" bun:"score,notnull"`
	TotalQuestions    int        `json:"totalQuestions" bun:"total_questions,notnull"`
	Lifeline50Used    bool       `json:"lifeline50Used" bun:"lifeline_50_used,notnull"`
	LifelineSkipUsed  bool       `json:"lifelineSkipUsed" bun:"lifeline_skip_used,notnull"`
	AskedQuestions    []string   `json:"askedQuestions" bun:"asked_questions,type:jsonb,notnull"`
	UsedColors        []string   `json:"usedColors" bun:"used_colors,type:jsonb,notnull"`
	CurrentQuestionID string     `json:"currentQuestionId" bun:"current_question_id"`
	CurrentStreak     int        `json:"currentStreak" bun:"current_streak,notnull"`
	BestStreak        int        `json:"bestStreak" bun:"best_streak,notnull"`
	CorrectCount      int        `json:"correctCount" bun:"correct_count,notnull"`
	WrongCount        int        `json:"wrongCount" bun:"wrong_count,notnull"`
	TotalResponseMs   int64      `json:"totalResponseMs" bun:"total_response_ms,notnull"`
	StartedAt         time.Time  `json:"startedAt" bun:"started_at,notnull"`
	EndedAt           *time.Time `json:"endedAt,omitempty" bun:"ended_at"`
	Version           int        `json:"version" bun:"version,notnull"`
}

// Open reports whether the session has not been ended.
func (s *GameSession) Open() bool {
	return s.EndedAt == nil
}

// Asked reports whether the question was already presented in this session.
func (s *GameSession) Asked(questionID string) bool {
	for _, id := range s.AskedQuestions {
		if id == questionID {
			return true
		}
	}
	return false
}

// MarkAsked appends the question and color if not yet present.
func (s *GameSession) MarkAsked(questionID, color string) {
	if !s.Asked(questionID) {
		s.AskedQuestions = append(s.AskedQuestions, questionID)
	}
	if color == "" {
		return
	}
	for _, c := range s.UsedColors {
		if c == color {
			return
		}
	}
	s.UsedColors = append(s.UsedColors, color)
}

// AnsweredCount is the number of graded answers in the session.
func (s *GameSession) AnsweredCount() int {
	return s.CorrectCount + s.WrongCount
}

// MeanResponseMs is the average response time over graded answers.
func (s *GameSession) MeanResponseMs() int64 {
	n := s.AnsweredCount()
	if n == 0 {
		return 0
	}
	return s.TotalResponseMs / int64(n)
}

// Lifeline names recorded on analytics.
const (
	LifelineNone       = ""
	LifelineFiftyFifty = "5050"
	LifelineSkip       = "skip"
)

// AnswerAnalytic is the immutable log entry of one submitted answer.
type AnswerAnalytic struct {
	ID                 string    `json:"id" bun:"id,pk"`
	SessionID          string    `json:"sessionId" bun:"session_id,notnull"`
	UserID             string    `json:"userId" bun:"user_id,notnull"`
	QuestionID         string    `json:"questionId" bun:"question_id,notnull"`
	CategoryID         string    `json:"categoryId" bun:"category_id,notnull"`
	StoreCode          string    `json:"storeCode" bun:"store_code"`
	SelectedAnswerID   string    `json:"selectedAnswerId" bun:"selected_answer_id,notnull"`
	SelectedAnswerText string    `json:"selectedAnswerText" bun:"selected_answer_text"`
	CorrectAnswerID    string    `json:"correctAnswerId" bun:"correct_answer_id,notnull"`
	CorrectAnswerText  string    `json:"correctAnswerText" bun:"correct_answer_text"`
	IsCorrect          bool      `json:"isCorrect" bun:"is_correct,notnull"`
	ResponseTimeMs     int64     `json:"responseTimeMs" bun:"response_time_ms,notnull"`
	LifelineUsed       string    `json:"lifelineUsed" bun:"lifeline_used"`
	QuestionColor      string    `json:"questionColor" bun:"question_color"`
	Gender             string    `json:"gender" bun:"gender"`
	FitCategory        string    `json:"fitCategory" bun:"fit_category"`
	ScoreDelta         int       `json:"scoreDelta" bun:"score_delta,notnull"`
	CreatedAt          time.Time `json:"createdAt" bun:"created_at,notnull"`
}

// BadgeDefinition is a catalog entry describing how a badge unlocks.
type BadgeDefinition struct {
	Code        string `json:"code" bun:"code,pk"`
	Name        string `json:"name" bun:"name,notnull"`
	Description string `json:"description" bun:"description"`
	Category    string `json:"category" bun:"category,notnull"`
	Tier        int    `json:"tier" bun:"tier,notnull"`
	UnlockType  string `json:"unlockType" bun:"unlock_type,notnull"`
	UnlockValue int    `json:"unlockValue" bun:"unlock_value,notnull"`
	IsHidden    bool   `json:"isHidden" bun:"is_hidden,notnull"`
}

// UserBadgeProgress tracks one user's counter towards one badge.
type UserBadgeProgress struct {
	UserID       string     `json:"userId" bun:"user_id,pk"`
	BadgeCode    string     `json:"badgeCode" bun:"badge_code,pk"`
	CurrentValue int        `json:"currentValue" bun:"current_value,notnull"`
	TierUnlocked int        `json:"tierUnlocked" bun:"tier_unlocked,notnull"`
	UnlockedAt   *time.Time `json:"unlockedAt,omitempty" bun:"unlocked_at"`
	UpdatedAt    time.Time  `json:"updatedAt" bun:"updated_at,notnull"`
}

// Unlocked reports whether the badge has been unlocked.
func (p *UserBadgeProgress) Unlocked() bool {
	return p.UnlockedAt != nil
}

// ReportStatus is the lifecycle state of an error report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// CanTransition reports whether moving from s to next is allowed.
func (s ReportStatus) CanTransition(next ReportStatus) bool {
	switch s {
	case ReportPending:
		return next == ReportReviewed || next == ReportResolved || next == ReportDismissed
	case ReportReviewed:
		return next == ReportResolved || next == ReportDismissed
	}
	return false
}

// Terminal reports whether the status closes the report.
func (s ReportStatus) Terminal() bool {
	return s == ReportResolved || s == ReportDismissed
}

// ErrorReport is a user flag on a question.
type ErrorReport struct {
	ID         string       `json:"id" bun:"id,pk"`
	QuestionID string       `json:"questionId" bun:"question_id,notnull"`
	UserID     string       `json:"userId" bun:"user_id,notnull"`
	Message    string       `json:"message" bun:"message,notnull"`
	Status     ReportStatus `json:"status" bun:"status,notnull"`
	AdminNotes string       `json:"adminNotes,omitempty" bun:"admin_notes"`
	CreatedAt  time.Time    `json:"createdAt" bun:"created_at,notnull"`
	ResolvedAt *time.Time   `json:"resolvedAt,omitempty" bun:"resolved_at"`
}

// LeaderboardEntry is a ranked view of a player's cumulative points.
type LeaderboardEntry struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	Rank        int    `json:"rank"`
}

// Leaderboard captures the ordered scoreboard.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Actor is the authenticated caller of an operation, taken from the bearer token.
type Actor struct {
	UserID    string `json:"userId"`
	Role      Role   `json:"role"`
	StoreCode string `json:"storeCode"`
}

// IsAdmin reports whether the caller has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanActFor reports whether the caller may operate on userID's data.
func (a Actor) CanActFor(userID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == userID)
}
