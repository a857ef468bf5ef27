package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"mavi-fit-game/internal/domain"
)

// QuestionLoader reads a category's question set straight from Postgres. It backs the
// question caches, so it stays on a lean pgx pool instead of the ORM.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

const loadQuestionsSQL = `SELECT id, category_id, images, description, explanation, tags, gender,
	fit_category, options, is_active, created_at
FROM questions WHERE category_id=$1 ORDER BY seq`

func (l *QuestionLoader) LoadCategoryQuestions(ctx context.Context, categoryID string) ([]domain.QuestionItem, error) {
	var exists bool
	if err := l.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM quiz_categories WHERE id=$1)`, categoryID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if !exists {
		return nil, domain.ErrCategoryNotFound
	}

	rows, err := l.pool.Query(ctx, loadQuestionsSQL, categoryID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	out := []domain.QuestionItem{}
	for rows.Next() {
		var (
			q                     domain.QuestionItem
			images, tags, options []byte
		)
		if err := rows.Scan(&q.ID, &q.CategoryID, &images, &q.Description, &q.Explanation, &tags,
			&q.Gender, &q.FitCategory, &options, &q.IsActive, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := unmarshalColumns(q.ID, images, &q.Images, tags, &q.Tags, options, &q.Options); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func unmarshalColumns(questionID string, pairs ...interface{}) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		raw, _ := pairs[i].([]byte)
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, pairs[i+1]); err != nil {
			return fmt.Errorf("unmarshal question %s: %w", questionID, err)
		}
	}
	return nil
}
