package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"mavi-fit-game/internal/app"
	"mavi-fit-game/internal/domain"
)

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	StoreCode   string `json:"storeCode"`
}

type reportRequest struct {
	QuestionID string `json:"questionId"`
	Message    string `json:"message"`
}

type transitionRequest struct {
	Status     domain.ReportStatus `json:"status"`
	AdminNotes string              `json:"adminNotes"`
}

type roleRequest struct {
	Role domain.Role `json:"role"`
}

type activeRequest struct {
	IsActive *bool `json:"isActive"`
}

func (h *handlers) register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.Users.Register(c.UserContext(), req.Email, req.Password, req.DisplayName, req.StoreCode)
	if err != nil {
		return err
	}
	return created(c, user)
}

func (h *handlers) login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.Users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return ok(c, result)
}

func (h *handlers) me(c *fiber.Ctx) error {
	actor := actorOf(c)
	user, err := h.Users.Get(c.UserContext(), actor, actor.UserID)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *handlers) playableCategories(c *fiber.Ctx) error {
	categories, err := h.Catalog.PlayableCategories(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, categories)
}

func (h *handlers) allCategories(c *fiber.Ctx) error {
	categories, err := h.Catalog.AllCategories(c.UserContext(), actorOf(c))
	if err != nil {
		return err
	}
	return ok(c, categories)
}

func (h *handlers) createCategory(c *fiber.Ctx) error {
	var in app.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	category, err := h.Catalog.CreateCategory(c.UserContext(), actorOf(c), in)
	if err != nil {
		return err
	}
	return created(c, category)
}

func (h *handlers) updateCategory(c *fiber.Ctx) error {
	var patch app.CategoryPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	category, err := h.Catalog.UpdateCategory(c.UserContext(), actorOf(c), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return ok(c, category)
}

func (h *handlers) listQuestions(c *fiber.Ctx) error {
	questions, err := h.Catalog.Questions(c.UserContext(), actorOf(c), c.Query("categoryId"), c.Query("tag"))
	if err != nil {
		return err
	}
	return ok(c, questions)
}

func (h *handlers) createQuestion(c *fiber.Ctx) error {
	var q domain.QuestionItem
	if err := parseBody(c, &q); err != nil {
		return err
	}
	question, err := h.Catalog.CreateQuestion(c.UserContext(), actorOf(c), q)
	if err != nil {
		return err
	}
	return created(c, question)
}

func (h *handlers) setQuestionActive(c *fiber.Ctx) error {
	var req activeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.IsActive == nil {
		return domain.Invalid("isActive", "required")
	}
	if err := h.Catalog.SetQuestionActive(c.UserContext(), actorOf(c), c.Params("id"), *req.IsActive); err != nil {
		return err
	}
	return ok(c, fiber.Map{"id": c.Params("id"), "isActive": *req.IsActive})
}

func (h *handlers) listUsers(c *fiber.Ctx) error {
	users, err := h.Users.List(c.UserContext(), actorOf(c))
	if err != nil {
		return err
	}
	return ok(c, users)
}

func (h *handlers) changeRole(c *fiber.Ctx) error {
	var req roleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Users.ChangeRole(c.UserContext(), actorOf(c), c.Params("id"), req.Role); err != nil {
		return err
	}
	return ok(c, fiber.Map{"id": c.Params("id"), "role": req.Role})
}

func (h *handlers) deleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Users.Delete(c.UserContext(), actorOf(c), id); err != nil {
		return err
	}
	if err := h.Leaderboard.Remove(c.UserContext(), id); err != nil {
		slog.Warn("leaderboard cleanup failed", slog.String("user_id", id), slog.Any("error", err))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) submitReport(c *fiber.Ctx) error {
	var req reportRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	report, err := h.Reports.Submit(c.UserContext(), actorOf(c), req.QuestionID, req.Message)
	if err != nil {
		return err
	}
	return created(c, report)
}

func (h *handlers) listReports(c *fiber.Ctx) error {
	reports, err := h.Reports.List(c.UserContext(), actorOf(c), domain.ReportStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return ok(c, reports)
}

func (h *handlers) transitionReport(c *fiber.Ctx) error {
	var req transitionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	report, err := h.Reports.Transition(c.UserContext(), actorOf(c), c.Params("id"), req.Status, req.AdminNotes)
	if err != nil {
		return err
	}
	return ok(c, report)
}

func (h *handlers) confusion(c *fiber.Ctx) error {
	filter, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	m, err := h.Analytics.Confusion(c.UserContext(), actorOf(c), filter)
	if err != nil {
		return err
	}
	return ok(c, m)
}

func (h *handlers) weakPoints(c *fiber.Ctx) error {
	filter, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	w, err := h.Analytics.WeakPoints(c.UserContext(), actorOf(c), filter)
	if err != nil {
		return err
	}
	return ok(c, w)
}

func (h *handlers) trainingPriorities(c *fiber.Ctx) error {
	filter, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	p, err := h.Analytics.TrainingPriorities(c.UserContext(), actorOf(c), filter)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *handlers) overview(c *fiber.Ctx) error {
	filter, err := analyticsFilter(c)
	if err != nil {
		return err
	}
	o, err := h.Analytics.Overview(c.UserContext(), actorOf(c), filter)
	if err != nil {
		return err
	}
	return ok(c, o)
}

// analyticsFilter reads categoryId, storeCode and an RFC 3339 since/until window.
func analyticsFilter(c *fiber.Ctx) (app.AnalyticsFilter, error) {
	filter := app.AnalyticsFilter{
		CategoryID: c.Query("categoryId"),
		StoreCode:  c.Query("storeCode"),
	}
	for name, dst := range map[string]*time.Time{"since": &filter.Since, "until": &filter.Until} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, domain.Invalid(name, "must be an RFC 3339 timestamp")
		}
		*dst = t
	}
	return filter, nil
}
