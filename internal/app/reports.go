package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"mavi-fit-game/internal/domain"
)

const maxReportMessage = 2000

// ReportService handles question error reports.
type ReportService struct {
	reports   ReportRepository
	questions QuestionStore
	now       func() time.Time
}

func NewReportService(reports ReportRepository, questions QuestionStore) *ReportService {
	return &ReportService{reports: reports, questions: questions, now: time.Now}
}

// Submit files a pending report on a question.
func (s *ReportService) Submit(ctx context.Context, actor domain.Actor, questionID, message string) (*domain.ErrorReport, error) {
	message = strings.TrimSpace(message)
	switch {
	case actor.UserID == "":
		return nil, domain.ErrUnauthorized
	case questionID == "":
		return nil, domain.Invalid("questionId", "required")
	case message == "":
		return nil, domain.Invalid("message", "required")
	case len(message) > maxReportMessage:
		return nil, domain.Invalid("message", "too long")
	}
	if _, err := s.questions.GetQuestion(ctx, questionID); err != nil {
		return nil, err
	}

	report := &domain.ErrorReport{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		UserID:     actor.UserID,
		Message:    message,
		Status:     domain.ReportPending,
		CreatedAt:  s.now(),
	}
	if err := s.reports.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// List returns reports, optionally filtered by status. Admin only.
func (s *ReportService) List(ctx context.Context, actor domain.Actor, status domain.ReportStatus) ([]domain.ErrorReport, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.reports.ListReports(ctx, status)
}

// Transition moves a report along pending → reviewed → resolved|dismissed.
func (s *ReportService) Transition(ctx context.Context, actor domain.Actor, id string, next domain.ReportStatus, notes string) (*domain.ErrorReport, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !report.Status.CanTransition(next) {
		return nil, domain.ErrInvalidTransition
	}
	report.Status = next
	if notes = strings.TrimSpace(notes); notes != "" {
		report.AdminNotes = notes
	}
	if next.Terminal() {
		at := s.now()
		report.ResolvedAt = &at
	}
	if err := s.reports.UpdateReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}
