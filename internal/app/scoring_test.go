package app

import (
	"math/rand"
	"testing"
	"time"

	"mavi-fit-game/internal/domain"
)

func TestScorePolicy(t *testing.T) {
	p := DefaultScoringPolicy()
	cases := []struct {
		name        string
		correct     bool
		ms          int64
		priorStreak int
		wantDelta   int
		wantStreak  int
	}{
		{"fast with streak", true, 500, 3, 30, 4},
		{"slow with streak", true, 5000, 5, 20, 6},
		{"fast without streak", true, 2999, 2, 15, 3},
		{"threshold is exclusive", true, 3000, 0, 10, 1},
		{"wrong resets", false, 100, 7, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := p.Score(tc.correct, tc.ms, tc.priorStreak)
			if g.ScoreDelta != tc.wantDelta || g.Streak != tc.wantStreak {
				t.Fatalf("got delta=%d streak=%d, want %d/%d", g.ScoreDelta, g.Streak, tc.wantDelta, tc.wantStreak)
			}
		})
	}
}

func TestFiftyFiftyKeepsCorrect(t *testing.T) {
	q := domain.QuestionItem{
		ID: "q1",
		Options: []domain.Option{
			{ID: "a", Text: "Slim", Correct: true},
			{ID: "b", Text: "Skinny"},
			{ID: "c", Text: "Mom"},
			{ID: "d", Text: "Straight"},
		},
	}
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		view, hidden := fiftyFifty(q, domain.QuestionView{ID: "q1"}, rnd)
		if len(hidden) != 2 || len(view.Options) != 2 {
			t.Fatalf("expected two hidden and two kept, got hidden=%v kept=%v", hidden, view.Options)
		}
		if !view.HasOption("a") {
			t.Fatalf("correct option hidden: %v", hidden)
		}
		for _, id := range hidden {
			if view.HasOption(id) {
				t.Fatalf("hidden option %s still shown", id)
			}
		}
	}
}

func TestFiftyFiftyFewWrongOptions(t *testing.T) {
	q := domain.QuestionItem{
		ID: "q1",
		Options: []domain.Option{
			{ID: "a", Text: "Slim", Correct: true},
			{ID: "b", Text: "Skinny"},
		},
	}
	view, hidden := fiftyFifty(q, domain.QuestionView{ID: "q1"}, rand.New(rand.NewSource(1)))
	if len(hidden) != 1 || len(view.Options) != 1 || view.Options[0].ID != "a" {
		t.Fatalf("expected only the correct option left, got %+v", view.Options)
	}
}

func TestChooseImagePrefersUnusedColor(t *testing.T) {
	images := []domain.QuestionImage{
		{URL: "blue.jpg", Color: "blue", IsPrimary: true},
		{URL: "black.jpg", Color: "black"},
		{URL: "grey.jpg", Color: "grey"},
	}
	if got := chooseImage(images, nil); got.Color != "blue" {
		t.Fatalf("expected primary image, got %s", got.Color)
	}
	if got := chooseImage(images, []string{"blue"}); got.Color != "black" {
		t.Fatalf("expected first unused color, got %s", got.Color)
	}
	if got := chooseImage(images, []string{"blue", "black", "grey"}); got.Color != "blue" {
		t.Fatalf("expected primary fallback when every color is used, got %s", got.Color)
	}
}

func TestEligibleQuestionsExcludes(t *testing.T) {
	pool := []domain.QuestionItem{
		{ID: "q1", IsActive: true},
		{ID: "q2", IsActive: false},
		{ID: "q3", IsActive: true},
		{ID: "q4", IsActive: true},
	}
	got := eligibleQuestions(pool, []string{"q1"}, []string{"q4"})
	if len(got) != 1 || got[0].ID != "q3" {
		t.Fatalf("expected only q3, got %+v", got)
	}
}

func TestNextLoginStreak(t *testing.T) {
	day := func(d, h int) *time.Time {
		at := time.Date(2024, 11, d, h, 0, 0, 0, time.UTC)
		return &at
	}
	now := time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		last    *time.Time
		current int
		want    int
	}{
		{"first login", nil, 0, 1},
		{"same day keeps", day(22, 1), 4, 4},
		{"yesterday continues", day(21, 23), 4, 5},
		{"gap restarts", day(19, 12), 4, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextLoginStreak(tc.last, tc.current, now, time.UTC); got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Kadın Jean":        "kadin-jean",
		"  Erkek Şort  ":    "erkek-sort",
		"Çocuk / Üst Giyim": "cocuk-ust-giyim",
		"İndirim!!":         "indirim",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
