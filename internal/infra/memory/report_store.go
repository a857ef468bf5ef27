package memory

import (
	"context"
	"sort"

	"mavi-fit-game/internal/domain"
)

type reportRow struct {
	report domain.ErrorReport
	seq    int
}

func (s *Store) CreateReport(_ context.Context, report *domain.ErrorReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = reportRow{report: *report, seq: s.next()}
	return nil
}

func (s *Store) GetReport(_ context.Context, id string) (*domain.ErrorReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	r := row.report
	return &r, nil
}

// ListReports returns reports newest first, all of them when status is empty.
func (s *Store) ListReports(_ context.Context, status domain.ReportStatus) ([]domain.ErrorReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]reportRow, 0, len(s.reports))
	for _, row := range s.reports {
		if status == "" || row.report.Status == status {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	out := make([]domain.ErrorReport, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.report)
	}
	return out, nil
}

func (s *Store) UpdateReport(_ context.Context, report *domain.ErrorReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.reports[report.ID]
	if !ok {
		return domain.ErrReportNotFound
	}
	row.report = *report
	s.reports[report.ID] = row
	return nil
}
