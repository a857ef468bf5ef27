package memory

import (
	"context"
	"sort"

	"mavi-fit-game/internal/domain"
)

type categoryRow struct {
	category domain.QuizCategory
	seq      int
}

type questionRow struct {
	question domain.QuestionItem
	seq      int
}

func (s *Store) GetCategory(_ context.Context, id string) (domain.QuizCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.categories[id]
	if !ok {
		return domain.QuizCategory{}, domain.ErrCategoryNotFound
	}
	return row.category, nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.QuizCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]categoryRow, 0, len(s.categories))
	for _, row := range s.categories {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]domain.QuizCategory, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.category)
	}
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, category *domain.QuizCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.categories {
		if row.category.Slug == category.Slug {
			return domain.Invalid("slug", "already in use")
		}
	}
	s.categories[category.ID] = categoryRow{category: *category, seq: s.next()}
	return nil
}

func (s *Store) UpdateCategory(_ context.Context, category *domain.QuizCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.categories[category.ID]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	row.category = *category
	s.categories[category.ID] = row
	return nil
}

func (s *Store) GetQuestion(_ context.Context, id string) (domain.QuestionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.questions[id]
	if !ok {
		return domain.QuestionItem{}, domain.ErrQuestionNotFound
	}
	return cloneQuestion(row.question), nil
}

func (s *Store) ListQuestions(_ context.Context, categoryID string) ([]domain.QuestionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questionsLocked(categoryID), nil
}

func (s *Store) CreateQuestion(_ context.Context, question *domain.QuestionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[question.CategoryID]; !ok {
		return domain.ErrCategoryNotFound
	}
	s.questions[question.ID] = questionRow{question: cloneQuestion(*question), seq: s.next()}
	return nil
}

func (s *Store) SetQuestionActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	row.question.IsActive = active
	s.questions[id] = row
	return nil
}

// LoadCategoryQuestions makes the store usable as the loader of a QuestionCache.
func (s *Store) LoadCategoryQuestions(_ context.Context, categoryID string) ([]domain.QuestionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.categories[categoryID]; !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return s.questionsLocked(categoryID), nil
}

func (s *Store) questionsLocked(categoryID string) []domain.QuestionItem {
	rows := make([]questionRow, 0)
	for _, row := range s.questions {
		if row.question.CategoryID == categoryID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]domain.QuestionItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneQuestion(row.question))
	}
	return out
}

func cloneQuestion(q domain.QuestionItem) domain.QuestionItem {
	q.Images = append([]domain.QuestionImage(nil), q.Images...)
	q.Options = append([]domain.Option(nil), q.Options...)
	q.Tags = cloneStrings(q.Tags)
	return q
}
