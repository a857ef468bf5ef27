package app

import (
	"math/rand"

	"mavi-fit-game/internal/domain"
)

// fiftyFifty hides up to two incorrect options of view, chosen at random among the
// wrong options still shown. The correct option is never hidden.
func fiftyFifty(question domain.QuestionItem, view domain.QuestionView, rnd *rand.Rand) (domain.QuestionView, []string) {
	if len(view.Options) == 0 {
		view.Options = optionViews(question.Options)
	}

	wrong := make([]string, 0, len(view.Options))
	for _, shown := range view.Options {
		opt, ok := question.OptionByID(shown.ID)
		if ok && !opt.Correct {
			wrong = append(wrong, opt.ID)
		}
	}
	rnd.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
	if len(wrong) > 2 {
		wrong = wrong[:2]
	}

	hidden := make(map[string]struct{}, len(wrong))
	for _, id := range wrong {
		hidden[id] = struct{}{}
	}
	kept := make([]domain.OptionView, 0, len(view.Options))
	for _, opt := range view.Options {
		if _, drop := hidden[opt.ID]; !drop {
			kept = append(kept, opt)
		}
	}
	view.Options = kept
	return view, wrong
}

func optionViews(options []domain.Option) []domain.OptionView {
	out := make([]domain.OptionView, 0, len(options))
	for _, opt := range options {
		out = append(out, domain.OptionView{ID: opt.ID, Text: opt.Text})
	}
	return out
}
