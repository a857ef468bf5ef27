package postgres

import (
	"context"
	"fmt"

	"mavi-fit-game/internal/domain"
)

func (s *Store) GetCategory(ctx context.Context, id string) (domain.QuizCategory, error) {
	row := new(categoryRow)
	if err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.QuizCategory{}, notFound(err, domain.ErrCategoryNotFound)
	}
	return row.QuizCategory, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.QuizCategory, error) {
	var rows []categoryRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("sort_order ASC, name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]domain.QuizCategory, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.QuizCategory)
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *domain.QuizCategory) error {
	_, err := s.db.NewInsert().Model(&categoryRow{QuizCategory: *category}).Exec(ctx)
	if isUniqueViolation(err) {
		return domain.Invalid("slug", "already in use")
	}
	return err
}

func (s *Store) UpdateCategory(ctx context.Context, category *domain.QuizCategory) error {
	res, err := s.db.NewUpdate().
		Model(&categoryRow{QuizCategory: *category}).
		Column("name", "is_active", "is_quiz_active", "completion_badge_code", "sort_order").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (domain.QuestionItem, error) {
	row := new(questionRow)
	if err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.QuestionItem{}, notFound(err, domain.ErrQuestionNotFound)
	}
	return row.QuestionItem, nil
}

func (s *Store) ListQuestions(ctx context.Context, categoryID string) ([]domain.QuestionItem, error) {
	var rows []questionRow
	err := s.db.NewSelect().Model(&rows).Where("category_id = ?", categoryID).OrderExpr("seq ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	out := make([]domain.QuestionItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.QuestionItem)
	}
	return out, nil
}

func (s *Store) CreateQuestion(ctx context.Context, question *domain.QuestionItem) error {
	row := &questionRow{QuestionItem: *question}
	if row.Tags == nil {
		row.Tags = []string{}
	}
	_, err := s.db.NewInsert().Model(row).Exec(ctx)
	if isForeignKeyViolation(err) {
		return domain.ErrCategoryNotFound
	}
	return err
}

func (s *Store) SetQuestionActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.NewUpdate().
		Model((*questionRow)(nil)).
		Set("is_active = ?", active).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}
