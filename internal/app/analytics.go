package app

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"mavi-fit-game/internal/domain"
)

// AnalyticsPolicy holds weak-point detection thresholds.
type AnalyticsPolicy struct {
	MinAttempts         int
	WeakAccuracy        float64
	QuestionTimeLimitMs int64
}

// AnalyticsService aggregates the answer log into training insight for the back office.
type AnalyticsService struct {
	answers AnalyticsRepository
	policy  AnalyticsPolicy
}

func NewAnalyticsService(answers AnalyticsRepository, policy AnalyticsPolicy) *AnalyticsService {
	if policy.MinAttempts <= 0 {
		policy.MinAttempts = 1
	}
	return &AnalyticsService{answers: answers, policy: policy}
}

// Confusion builds the correct × selected answer table.
func (s *AnalyticsService) Confusion(ctx context.Context, actor domain.Actor, filter AnalyticsFilter) (domain.ConfusionMatrix, error) {
	answers, err := s.load(ctx, actor, filter)
	if err != nil {
		return domain.ConfusionMatrix{}, err
	}
	return confusionMatrix(answers), nil
}

// WeakPoints lists questions and fit categories answered below the accuracy threshold.
func (s *AnalyticsService) WeakPoints(ctx context.Context, actor domain.Actor, filter AnalyticsFilter) (domain.WeakPoints, error) {
	answers, err := s.load(ctx, actor, filter)
	if err != nil {
		return domain.WeakPoints{}, err
	}
	return weakPoints(answers, s.policy), nil
}

// TrainingPriorities ranks fit categories by error rate, volume and slowness.
func (s *AnalyticsService) TrainingPriorities(ctx context.Context, actor domain.Actor, filter AnalyticsFilter) ([]domain.TrainingPriority, error) {
	answers, err := s.load(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	return trainingPriorities(answers, s.policy.QuestionTimeLimitMs), nil
}

// Overview reads the answer log once and computes the three aggregates over it concurrently.
func (s *AnalyticsService) Overview(ctx context.Context, actor domain.Actor, filter AnalyticsFilter) (domain.AnalyticsOverview, error) {
	answers, err := s.load(ctx, actor, filter)
	if err != nil {
		return domain.AnalyticsOverview{}, fmt.Errorf("load answers: %w", err)
	}

	var (
		out domain.AnalyticsOverview
		g   errgroup.Group
	)
	g.Go(func() error {
		out.Confusion = confusionMatrix(answers)
		return nil
	})
	g.Go(func() error {
		out.WeakPoints = weakPoints(answers, s.policy)
		return nil
	})
	g.Go(func() error {
		out.Priorities = trainingPriorities(answers, s.policy.QuestionTimeLimitMs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.AnalyticsOverview{}, err
	}
	return out, nil
}

func (s *AnalyticsService) load(ctx context.Context, actor domain.Actor, filter AnalyticsFilter) ([]domain.AnswerAnalytic, error) {
	scoped, err := scopeFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	return s.answers.ListAnswers(ctx, scoped)
}

// scopeFilter pins store managers to their own store.
func scopeFilter(actor domain.Actor, filter AnalyticsFilter) (AnalyticsFilter, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		return filter, nil
	case domain.RoleStoreManager:
		if actor.StoreCode == "" {
			return AnalyticsFilter{}, domain.ErrForbidden
		}
		filter.StoreCode = actor.StoreCode
		return filter, nil
	}
	return AnalyticsFilter{}, domain.ErrForbidden
}

type tally struct {
	label    string
	attempts int
	correct  int
	totalMs  int64
}

func (t *tally) add(a domain.AnswerAnalytic) {
	t.attempts++
	if a.IsCorrect {
		t.correct++
	}
	t.totalMs += a.ResponseTimeMs
}

func (t *tally) accuracy() float64 {
	if t.attempts == 0 {
		return 0
	}
	return float64(t.correct) / float64(t.attempts)
}

func (t *tally) avgMs() int64 {
	if t.attempts == 0 {
		return 0
	}
	return t.totalMs / int64(t.attempts)
}

func (t *tally) view(key string) domain.Accuracy {
	return domain.Accuracy{
		Key:           key,
		Label:         t.label,
		Attempts:      t.attempts,
		Correct:       t.correct,
		Accuracy:      round(t.accuracy()),
		AvgResponseMs: t.avgMs(),
	}
}

func groupBy(answers []domain.AnswerAnalytic, key func(domain.AnswerAnalytic) (string, string)) map[string]*tally {
	out := make(map[string]*tally)
	for _, a := range answers {
		k, label := key(a)
		if k == "" {
			continue
		}
		t, ok := out[k]
		if !ok {
			t = &tally{label: label}
			out[k] = t
		}
		t.add(a)
	}
	return out
}

func byFitCategory(a domain.AnswerAnalytic) (string, string) { return a.FitCategory, "" }

func byQuestion(a domain.AnswerAnalytic) (string, string) { return a.QuestionID, a.CorrectAnswerText }

func confusionMatrix(answers []domain.AnswerAnalytic) domain.ConfusionMatrix {
	type pair struct{ correct, selected string }
	counts := make(map[pair]int)
	for _, a := range answers {
		counts[pair{a.CorrectAnswerText, a.SelectedAnswerText}]++
	}
	cells := make([]domain.ConfusionCell, 0, len(counts))
	for p, n := range counts {
		cells = append(cells, domain.ConfusionCell{CorrectAnswer: p.correct, SelectedAnswer: p.selected, Count: n})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].CorrectAnswer != cells[j].CorrectAnswer {
			return cells[i].CorrectAnswer < cells[j].CorrectAnswer
		}
		if cells[i].Count != cells[j].Count {
			return cells[i].Count > cells[j].Count
		}
		return cells[i].SelectedAnswer < cells[j].SelectedAnswer
	})

	return domain.ConfusionMatrix{
		TotalAnswers:  len(answers),
		Cells:         cells,
		FitCategories: sortedAccuracy(groupBy(answers, byFitCategory), 0),
	}
}

func weakPoints(answers []domain.AnswerAnalytic, policy AnalyticsPolicy) domain.WeakPoints {
	weak := func(groups map[string]*tally) []domain.Accuracy {
		out := []domain.Accuracy{}
		for _, acc := range sortedAccuracy(groups, policy.MinAttempts) {
			if acc.Accuracy < policy.WeakAccuracy {
				out = append(out, acc)
			}
		}
		return out
	}
	return domain.WeakPoints{
		Questions:     weak(groupBy(answers, byQuestion)),
		FitCategories: weak(groupBy(answers, byFitCategory)),
	}
}

// sortedAccuracy orders groups with at least minAttempts by accuracy ascending. Ties go to
// the larger sample, then the key.
func sortedAccuracy(groups map[string]*tally, minAttempts int) []domain.Accuracy {
	out := make([]domain.Accuracy, 0, len(groups))
	for k, t := range groups {
		if t.attempts < minAttempts {
			continue
		}
		out = append(out, t.view(k))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy < out[j].Accuracy
		}
		if out[i].Attempts != out[j].Attempts {
			return out[i].Attempts > out[j].Attempts
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// trainingPriorities scores each fit category as
// errorRate*70 + min(attempts/50, 1)*20 + min(avgResponse/timeLimit, 1)*10.
func trainingPriorities(answers []domain.AnswerAnalytic, timeLimitMs int64) []domain.TrainingPriority {
	groups := groupBy(answers, byFitCategory)
	out := make([]domain.TrainingPriority, 0, len(groups))
	for k, t := range groups {
		errorRate := 1 - t.accuracy()
		volume := math.Min(float64(t.attempts)/50, 1)
		slowness := 0.0
		if timeLimitMs > 0 {
			slowness = math.Min(float64(t.avgMs())/float64(timeLimitMs), 1)
		}
		out = append(out, domain.TrainingPriority{
			FitCategory:   k,
			Attempts:      t.attempts,
			ErrorRate:     round(errorRate),
			AvgResponseMs: t.avgMs(),
			Priority:      round(errorRate*70 + volume*20 + slowness*10),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].FitCategory < out[j].FitCategory
	})
	return out
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
