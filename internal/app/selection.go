package app

import (
	"math/rand"
	"sync"
	"time"

	"mavi-fit-game/internal/domain"
)

// picker wraps a random source for concurrent request handlers.
type picker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newPicker(seed int64) *picker {
	return &picker{rnd: rand.New(rand.NewSource(seed))}
}

func newTimePicker() *picker {
	return newPicker(time.Now().UnixNano())
}

func (p *picker) with(fn func(r *rand.Rand)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.rnd)
}

// activeQuestions drops deactivated questions.
func activeQuestions(questions []domain.QuestionItem) []domain.QuestionItem {
	out := make([]domain.QuestionItem, 0, len(questions))
	for _, q := range questions {
		if q.IsActive {
			out = append(out, q)
		}
	}
	return out
}

// eligibleQuestions returns the active questions not present in any of the excluded id lists.
func eligibleQuestions(pool []domain.QuestionItem, excluded ...[]string) []domain.QuestionItem {
	skip := make(map[string]struct{})
	for _, ids := range excluded {
		for _, id := range ids {
			skip[id] = struct{}{}
		}
	}
	out := make([]domain.QuestionItem, 0, len(pool))
	for _, q := range pool {
		if !q.IsActive {
			continue
		}
		if _, asked := skip[q.ID]; asked {
			continue
		}
		out = append(out, q)
	}
	return out
}

// pickQuestion draws a random question from candidates.
func (p *picker) pickQuestion(candidates []domain.QuestionItem) (domain.QuestionItem, bool) {
	if len(candidates) == 0 {
		return domain.QuestionItem{}, false
	}
	var idx int
	p.with(func(r *rand.Rand) { idx = r.Intn(len(candidates)) })
	return candidates[idx], true
}

// present builds the player-facing view of q, preferring an image color not yet used in the session.
func (p *picker) present(q domain.QuestionItem, usedColors []string) domain.QuestionView {
	image := chooseImage(q.Images, usedColors)
	options := optionViews(q.Options)
	p.with(func(r *rand.Rand) {
		r.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	})
	tags := append([]string(nil), q.Tags...)
	return domain.QuestionView{
		ID:          q.ID,
		CategoryID:  q.CategoryID,
		ImageURL:    image.URL,
		Color:       image.Color,
		Description: q.Description,
		Tags:        tags,
		Options:     options,
	}
}

func chooseImage(images []domain.QuestionImage, usedColors []string) domain.QuestionImage {
	if len(images) == 0 {
		return domain.QuestionImage{}
	}
	used := make(map[string]struct{}, len(usedColors))
	for _, c := range usedColors {
		used[c] = struct{}{}
	}

	var fresh []domain.QuestionImage
	for _, img := range images {
		if _, ok := used[img.Color]; !ok {
			fresh = append(fresh, img)
		}
	}
	if len(fresh) == 0 {
		fresh = images
	}
	for _, img := range fresh {
		if img.IsPrimary {
			return img
		}
	}
	return fresh[0]
}

func findQuestion(pool []domain.QuestionItem, id string) (domain.QuestionItem, bool) {
	for _, q := range pool {
		if q.ID == id {
			return q, true
		}
	}
	return domain.QuestionItem{}, false
}
