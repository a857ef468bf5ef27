package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"mavi-fit-game/internal/domain"
)

// CategoryInput is the admin payload for a new category.
type CategoryInput struct {
	Name                string `json:"name"`
	Slug                string `json:"slug"`
	IsActive            bool   `json:"isActive"`
	IsQuizActive        bool   `json:"isQuizActive"`
	IsAllCategories     bool   `json:"isAllCategories"`
	CompletionBadgeCode string `json:"completionBadgeCode"`
	SortOrder           int    `json:"sortOrder"`
}

// CategoryPatch updates only the fields that are set.
type CategoryPatch struct {
	Name                *string `json:"name"`
	IsActive            *bool   `json:"isActive"`
	IsQuizActive        *bool   `json:"isQuizActive"`
	CompletionBadgeCode *string `json:"completionBadgeCode"`
	SortOrder           *int    `json:"sortOrder"`
}

// CatalogService administers categories and questions.
type CatalogService struct {
	categories CategoryRepository
	questions  QuestionStore
	cache      QuestionRepository
	badges     BadgeRepository
	now        func() time.Time
}

func NewCatalogService(categories CategoryRepository, questions QuestionStore, cache QuestionRepository, badges BadgeRepository) *CatalogService {
	return &CatalogService{categories: categories, questions: questions, cache: cache, badges: badges, now: time.Now}
}

// PlayableCategories lists the categories a player can start a game on.
func (s *CatalogService) PlayableCategories(ctx context.Context) ([]domain.QuizCategory, error) {
	all, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.QuizCategory, 0, len(all))
	for _, c := range all {
		if c.Playable() || (c.IsAllCategories && c.IsActive) {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out, nil
}

// AllCategories lists every category. Admin only.
func (s *CatalogService) AllCategories(ctx context.Context, actor domain.Actor) ([]domain.QuizCategory, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	all, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	sortCategories(all)
	return all, nil
}

// CreateCategory adds a category. Concrete categories get a completion badge created
// alongside unless an existing badge code is given.
func (s *CatalogService) CreateCategory(ctx context.Context, actor domain.Actor, in CategoryInput) (*domain.QuizCategory, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "required")
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, domain.Invalid("slug", "required")
	}

	category := &domain.QuizCategory{
		ID:                  uuid.NewString(),
		Name:                name,
		Slug:                slug,
		IsActive:            in.IsActive,
		IsQuizActive:        in.IsQuizActive,
		IsAllCategories:     in.IsAllCategories,
		CompletionBadgeCode: in.CompletionBadgeCode,
		SortOrder:           in.SortOrder,
		CreatedAt:           s.now(),
	}

	switch {
	case category.CompletionBadgeCode != "":
		if _, err := s.badges.GetDefinition(ctx, category.CompletionBadgeCode); err != nil {
			return nil, err
		}
	case category.IsAllCategories:
		category.CompletionBadgeCode = AllCategoriesBadgeCode
	default:
		def := CategoryBadge(*category)
		if err := s.badges.UpsertDefinition(ctx, &def); err != nil {
			return nil, fmt.Errorf("create completion badge: %w", err)
		}
		category.CompletionBadgeCode = def.Code
	}

	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	slog.Info("category created", slog.String("category_id", category.ID), slog.String("slug", slug))
	return category, nil
}

// UpdateCategory applies a patch to a category.
func (s *CatalogService) UpdateCategory(ctx context.Context, actor domain.Actor, id string, patch CategoryPatch) (*domain.QuizCategory, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	category, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.Invalid("name", "required")
		}
		category.Name = name
	}
	if patch.IsActive != nil {
		category.IsActive = *patch.IsActive
	}
	if patch.IsQuizActive != nil {
		category.IsQuizActive = *patch.IsQuizActive
	}
	if patch.SortOrder != nil {
		category.SortOrder = *patch.SortOrder
	}
	if patch.CompletionBadgeCode != nil {
		code := strings.TrimSpace(*patch.CompletionBadgeCode)
		if code != "" {
			if _, err := s.badges.GetDefinition(ctx, code); err != nil {
				return nil, err
			}
		}
		category.CompletionBadgeCode = code
	}
	if err := s.categories.UpdateCategory(ctx, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// Questions lists a category's questions, optionally narrowed to a tag. Admin only.
func (s *CatalogService) Questions(ctx context.Context, actor domain.Actor, categoryID, tag string) ([]domain.QuestionItem, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if categoryID == "" {
		return nil, domain.Invalid("categoryId", "required")
	}
	questions, err := s.questions.ListQuestions(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return questions, nil
	}
	out := make([]domain.QuestionItem, 0, len(questions))
	for _, q := range questions {
		if q.HasTag(tag) {
			out = append(out, q)
		}
	}
	return out, nil
}

// CreateQuestion validates and stores a question, then drops the category's cached set.
func (s *CatalogService) CreateQuestion(ctx context.Context, actor domain.Actor, q domain.QuestionItem) (*domain.QuestionItem, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if q.CategoryID == "" {
		return nil, domain.Invalid("categoryId", "required")
	}
	if _, err := s.categories.GetCategory(ctx, q.CategoryID); err != nil {
		return nil, err
	}
	if err := normalizeQuestion(&q); err != nil {
		return nil, err
	}
	q.ID = uuid.NewString()
	q.IsActive = true
	q.CreatedAt = s.now()

	if err := s.questions.CreateQuestion(ctx, &q); err != nil {
		return nil, err
	}
	s.invalidate(ctx, q.CategoryID)
	return &q, nil
}

// SetQuestionActive soft-(de)activates a question.
func (s *CatalogService) SetQuestionActive(ctx context.Context, actor domain.Actor, id string, active bool) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	q, err := s.questions.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if err := s.questions.SetQuestionActive(ctx, id, active); err != nil {
		return err
	}
	s.invalidate(ctx, q.CategoryID)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, categoryID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, categoryID); err != nil {
		slog.Warn("question cache invalidation failed", slog.String("category_id", categoryID), slog.Any("error", err))
	}
}

// normalizeQuestion checks the question shape and fills option ids and the primary image.
func normalizeQuestion(q *domain.QuestionItem) error {
	if len(q.Images) == 0 {
		return domain.Invalid("images", "at least one image required")
	}
	if len(q.Options) < 2 {
		return domain.Invalid("options", "at least two options required")
	}

	primary := 0
	for i := range q.Images {
		if q.Images[i].URL == "" {
			return domain.Invalid("images", "url required")
		}
		q.Images[i].Color = strings.ToLower(strings.TrimSpace(q.Images[i].Color))
		if q.Images[i].IsPrimary {
			primary++
		}
	}
	if primary == 0 {
		q.Images[0].IsPrimary = true
	} else if primary > 1 {
		return domain.Invalid("images", "only one primary image allowed")
	}

	correct := 0
	seen := make(map[string]struct{}, len(q.Options))
	for i := range q.Options {
		opt := &q.Options[i]
		opt.Text = strings.TrimSpace(opt.Text)
		if opt.Text == "" {
			return domain.Invalid("options", "option text required")
		}
		if opt.ID == "" {
			opt.ID = "opt-" + strconv.Itoa(i+1)
		}
		if _, dup := seen[opt.ID]; dup {
			return domain.Invalid("options", "duplicate option id "+opt.ID)
		}
		seen[opt.ID] = struct{}{}
		if opt.Correct {
			correct++
		}
	}
	if correct != 1 {
		return domain.Invalid("options", "exactly one correct option required")
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	return nil
}

func sortCategories(categories []domain.QuizCategory) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Name < categories[j].Name
	})
}

var slugReplacer = strings.NewReplacer(
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ı", "i", "İ", "i",
	"ö", "o", "Ö", "o",
	"ş", "s", "Ş", "s",
	"ü", "u", "Ü", "u",
)

// Slugify turns a display name into a lowercase ASCII slug.
func Slugify(s string) string {
	s = slugReplacer.Replace(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
