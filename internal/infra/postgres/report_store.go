package postgres

import (
	"context"
	"database/sql"

	"mavi-fit-game/internal/domain"
)

func (s *Store) CreateReport(ctx context.Context, report *domain.ErrorReport) error {
	_, err := s.db.NewInsert().Model(&reportRow{ErrorReport: *report}).Exec(ctx)
	if isForeignKeyViolation(err) {
		return domain.ErrQuestionNotFound
	}
	return err
}

func (s *Store) GetReport(ctx context.Context, id string) (*domain.ErrorReport, error) {
	row := new(reportRow)
	if err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, domain.ErrReportNotFound)
	}
	return &row.ErrorReport, nil
}

// ListReports returns the newest reports first.
func (s *Store) ListReports(ctx context.Context, status domain.ReportStatus) ([]domain.ErrorReport, error) {
	var rows []reportRow
	q := s.db.NewSelect().Model(&rows).OrderExpr("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.ErrorReport, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ErrorReport)
	}
	return out, nil
}

func (s *Store) UpdateReport(ctx context.Context, report *domain.ErrorReport) error {
	res, err := s.db.NewUpdate().
		Model(&reportRow{ErrorReport: *report}).
		Column("status", "admin_notes", "resolved_at").
		WherePK().
		Exec(ctx)
	return affected(res, err, domain.ErrReportNotFound)
}

func affected(res sql.Result, err error, sentinel error) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel
	}
	return nil
}
