package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"mavi-fit-game/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.NewInsert().Model(&userRow{User: *user}).Exec(ctx)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *Store) findUser(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	row := new(userRow)
	if err := s.db.NewSelect().Model(row).Where(where, arg).Scan(ctx); err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &row.User, nil
}

func (s *Store) ListUsers(ctx context.Context, storeCode string) ([]domain.User, error) {
	var rows []userRow
	q := s.db.NewSelect().Model(&rows).OrderExpr("created_at ASC")
	if storeCode != "" {
		q = q.Where("store_code = ?", storeCode)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.User)
	}
	return out, nil
}

func (s *Store) RecordLogin(ctx context.Context, id string, streak, longest int, at time.Time) error {
	res, err := s.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("login_streak = ?", streak).
		Set("longest_login_streak = ?", longest).
		Set("last_login_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	return affected(res, err, domain.ErrUserNotFound)
}

// IncrementStats adds delta to the counters in one statement and returns the updated user.
func (s *Store) IncrementStats(ctx context.Context, id string, delta domain.UserStatsDelta) (*domain.User, error) {
	row := new(userRow)
	err := s.db.NewUpdate().
		Model(row).
		Set("total_answered = total_answered + ?", delta.Answered).
		Set("total_correct = total_correct + ?", delta.Correct).
		Set("total_points = total_points + ?", delta.Points).
		Set("training_seconds = training_seconds + ?", delta.TrainingSeconds).
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &row.User, nil
}

func (s *Store) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	res, err := s.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("role = ?", role).
		Where("id = ?", id).
		Exec(ctx)
	return affected(res, err, domain.ErrUserNotFound)
}

// DeleteUser removes the user and everything it owns in one transaction.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*answerRow)(nil),
			(*sessionRow)(nil),
			(*progressRow)(nil),
			(*reportRow)(nil),
		} {
			if _, err := tx.NewDelete().Model(model).Where("user_id = ?", id).Exec(ctx); err != nil {
				return fmt.Errorf("delete user data: %w", err)
			}
		}
		res, err := tx.NewDelete().Model((*userRow)(nil)).Where("id = ?", id).Exec(ctx)
		return affected(res, err, domain.ErrUserNotFound)
	})
}
