package app

// ScoringPolicy configures how a graded answer turns into points.
type ScoringPolicy struct {
	BasePoints       int
	SpeedBonus       int
	FastAnswerMs     int64
	StreakThreshold  int
	StreakMultiplier int
}

// DefaultScoringPolicy is 10 base, +5 under 3s, x2 from a streak of 3.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		BasePoints:       10,
		SpeedBonus:       5,
		FastAnswerMs:     3000,
		StreakThreshold:  3,
		StreakMultiplier: 2,
	}
}

// Grade is the outcome of scoring one answer.
type Grade struct {
	Correct    bool
	ScoreDelta int
	Streak     int
	FastAnswer bool
	Multiplied bool
}

// Score grades an answer given the session's consecutive-correct streak before it.
func (p ScoringPolicy) Score(correct bool, responseTimeMs int64, priorStreak int) Grade {
	if !correct {
		return Grade{}
	}
	g := Grade{Correct: true, Streak: priorStreak + 1}
	points := p.BasePoints
	if responseTimeMs < p.FastAnswerMs {
		points += p.SpeedBonus
		g.FastAnswer = true
	}
	if p.StreakThreshold > 0 && priorStreak >= p.StreakThreshold && p.StreakMultiplier > 1 {
		points *= p.StreakMultiplier
		g.Multiplied = true
	}
	g.ScoreDelta = points
	return g
}
