package http

import (
	"github.com/gofiber/fiber/v2"

	"mavi-fit-game/internal/app"
	"mavi-fit-game/internal/domain"
)

type startRequest struct {
	UserID     string `json:"userId"`
	CategoryID string `json:"categoryId"`
}

type answerRequest struct {
	SessionID        string `json:"sessionId"`
	QuestionID       string `json:"questionId"`
	SelectedAnswerID string `json:"selectedAnswerId"`
	ResponseTimeMs   int64  `json:"responseTimeMs"`
	LifelineUsed     string `json:"lifelineUsed"`
	QuestionColor    string `json:"questionColor"`
}

type fiftyFiftyRequest struct {
	SessionID string              `json:"sessionId"`
	Question  domain.QuestionView `json:"question"`
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

type completeRequest struct {
	SessionID  string `json:"sessionId"`
	UserID     string `json:"userId"`
	CategoryID string `json:"categoryId"`
}

type checkRequest struct {
	UserID    string        `json:"userId"`
	EventType string        `json:"eventType"`
	EventData app.EventData `json:"eventData"`
}

// userOrSelf defaults an omitted body userId to the token subject.
func userOrSelf(actor domain.Actor, userID string) string {
	if userID == "" {
		return actor.UserID
	}
	return userID
}

func (h *handlers) startGame(c *fiber.Ctx) error {
	var req startRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	actor := actorOf(c)
	start, err := h.Game.StartGame(c.UserContext(), actor, userOrSelf(actor, req.UserID), req.CategoryID)
	if err != nil {
		return err
	}
	return ok(c, start)
}

func (h *handlers) submitAnswer(c *fiber.Ctx) error {
	var req answerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.Game.SubmitAnswer(c.UserContext(), actorOf(c), domain.AnswerSubmission{
		SessionID:        req.SessionID,
		QuestionID:       req.QuestionID,
		SelectedAnswerID: req.SelectedAnswerID,
		ResponseTimeMs:   req.ResponseTimeMs,
		LifelineUsed:     req.LifelineUsed,
		QuestionColor:    req.QuestionColor,
	})
	if err != nil {
		return err
	}
	return ok(c, result)
}

func (h *handlers) fiftyFifty(c *fiber.Ctx) error {
	var req fiftyFiftyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.Game.UseFiftyFifty(c.UserContext(), actorOf(c), req.SessionID, req.Question)
	if err != nil {
		return err
	}
	return ok(c, view)
}

func (h *handlers) skip(c *fiber.Ctx) error {
	var req sessionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.Game.UseSkip(c.UserContext(), actorOf(c), req.SessionID)
	if err != nil {
		return err
	}
	return ok(c, view)
}

func (h *handlers) completeCategory(c *fiber.Ctx) error {
	var req completeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.Game.CompleteCategory(c.UserContext(), actorOf(c), req.SessionID, req.UserID, req.CategoryID)
	if err != nil {
		return err
	}
	return ok(c, result)
}

func (h *handlers) endGame(c *fiber.Ctx) error {
	var req sessionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	summary, err := h.Game.EndGame(c.UserContext(), actorOf(c), req.SessionID)
	if err != nil {
		return err
	}
	return ok(c, summary)
}

func (h *handlers) checkBadges(c *fiber.Ctx) error {
	var req checkRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	actor := actorOf(c)
	unlocks, err := h.Badges.Check(c.UserContext(), actor, userOrSelf(actor, req.UserID), req.EventType, req.EventData)
	if err != nil {
		return err
	}
	return ok(c, unlocks)
}

func (h *handlers) myBadges(c *fiber.Ctx) error {
	actor := actorOf(c)
	badges, err := h.Badges.UserBadges(c.UserContext(), actor, actor.UserID)
	if err != nil {
		return err
	}
	return ok(c, badges)
}

func (h *handlers) leaderboard(c *fiber.Ctx) error {
	lb, err := h.Leaderboard.Top(c.UserContext(), c.QueryInt("limit"))
	if err != nil {
		return err
	}
	return ok(c, lb)
}
