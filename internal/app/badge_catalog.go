package app

import (
	"strconv"

	"mavi-fit-game/internal/domain"
)

// Badge unlock types.
const (
	UnlockSessionStreak    = "session_streak"
	UnlockAvgResponseMs    = "avg_response_ms"
	UnlockTotalAnswers     = "total_answers"
	UnlockTotalPoints      = "total_points"
	UnlockLoginStreak      = "login_streak"
	UnlockTrainingMinutes  = "training_minutes"
	UnlockPerfectGame      = "perfect_game"
	UnlockNightOwl         = "night_owl"
	UnlockLifelineFail     = "lifeline_fail"
	UnlockLastSecond       = "last_second"
	UnlockLightningStreak  = "lightning_streak"
	UnlockCategoryComplete = "category_complete"
)

// Badge categories.
const (
	BadgeCategoryStreak   = "streak"
	BadgeCategorySpeed    = "speed"
	BadgeCategoryVeteran  = "veteran"
	BadgeCategoryPoints   = "points"
	BadgeCategoryDaily    = "daily"
	BadgeCategoryTraining = "training"
	BadgeCategorySecret   = "secret"
	BadgeCategoryCategory = "category"
)

// AllCategoriesBadgeCode is awarded for completing the all-categories mode.
const AllCategoriesBadgeCode = "category_all"

// DefaultBadgeCatalog is the seed catalog. Category completion badges for concrete
// categories are created alongside their categories.
func DefaultBadgeCatalog() []domain.BadgeDefinition {
	var defs []domain.BadgeDefinition

	streakNames := []string{"Isınma Turu", "Seri Avcısı", "Durdurulamaz", "Alev Alev", "Efsane Seri", "Fit Ustası"}
	for i, n := range []int{10, 15, 20, 30, 40, 50} {
		defs = append(defs, domain.BadgeDefinition{
			Code:        "streak_" + strconv.Itoa(n),
			Name:        streakNames[i],
			Description: "Bir oyunda art arda " + strconv.Itoa(n) + " doğru cevap",
			Category:    BadgeCategoryStreak,
			Tier:        i + 1,
			UnlockType:  UnlockSessionStreak,
			UnlockValue: n,
		})
	}

	speed := []struct {
		code, name string
		ms         int
	}{
		{"speed_bronze", "Hızlı Eller (Bronz)", 5000},
		{"speed_silver", "Hızlı Eller (Gümüş)", 3500},
		{"speed_gold", "Hızlı Eller (Altın)", 2000},
	}
	for i, s := range speed {
		defs = append(defs, domain.BadgeDefinition{
			Code:        s.code,
			Name:        s.name,
			Description: "Bir oyunda ortalama cevap süresi " + strconv.Itoa(s.ms) + " ms altında",
			Category:    BadgeCategorySpeed,
			Tier:        i + 1,
			UnlockType:  UnlockAvgResponseMs,
			UnlockValue: s.ms,
		})
	}

	defs = append(defs, tiered("veteran", "Veteran", "cevaplanan soru", BadgeCategoryVeteran, UnlockTotalAnswers, []int{50, 250, 1000})...)
	defs = append(defs, tiered("points", "Puan Avcısı", "toplam puan", BadgeCategoryPoints, UnlockTotalPoints, []int{500, 2500, 10000})...)
	defs = append(defs, tiered("daily", "Günlük Rutin", "gün üst üste giriş", BadgeCategoryDaily, UnlockLoginStreak, []int{3, 7, 30})...)
	defs = append(defs, tiered("training", "Eğitim Maratonu", "dakika eğitim", BadgeCategoryTraining, UnlockTrainingMinutes, []int{30, 120, 600})...)

	secrets := []domain.BadgeDefinition{
		{Code: "secret_perfect_game", Name: "Kusursuz", Description: "Hiç yanlış yapmadan bir oyunu bitir", UnlockType: UnlockPerfectGame},
		{Code: "secret_night_owl", Name: "Gece Kuşu", Description: "Gece yarısından sonra oyna", UnlockType: UnlockNightOwl},
		{Code: "secret_lifeline_fail", Name: "Joker de Kurtarmadı", Description: "50-50 jokerine rağmen yanlış cevap", UnlockType: UnlockLifelineFail},
		{Code: "secret_last_second", Name: "Son Saniye", Description: "Süre bitmek üzereyken doğru cevap", UnlockType: UnlockLastSecond},
		{Code: "secret_lightning", Name: "Yıldırım", Description: "Çok kısa sürede art arda doğru cevaplar", UnlockType: UnlockLightningStreak},
	}
	for _, s := range secrets {
		s.Category = BadgeCategorySecret
		s.Tier = 1
		s.UnlockValue = 1
		s.IsHidden = true
		defs = append(defs, s)
	}

	defs = append(defs, domain.BadgeDefinition{
		Code:        AllCategoriesBadgeCode,
		Name:        "Tüm Kategoriler Ustası",
		Description: "Tüm kategoriler modunu tamamla",
		Category:    BadgeCategoryCategory,
		Tier:        1,
		UnlockType:  UnlockCategoryComplete,
		UnlockValue: 1,
	})
	return defs
}

// CategoryBadge builds the completion badge for a category.
func CategoryBadge(category domain.QuizCategory) domain.BadgeDefinition {
	return domain.BadgeDefinition{
		Code:        "category_" + category.Slug,
		Name:        category.Name + " Uzmanı",
		Description: category.Name + " kategorisindeki tüm soruları tamamla",
		Category:    BadgeCategoryCategory,
		Tier:        1,
		UnlockType:  UnlockCategoryComplete,
		UnlockValue: 1,
	}
}

func tiered(prefix, name, unit, category, unlockType string, values []int) []domain.BadgeDefinition {
	tierNames := []string{"Bronz", "Gümüş", "Altın"}
	out := make([]domain.BadgeDefinition, 0, len(values))
	for i, v := range values {
		out = append(out, domain.BadgeDefinition{
			Code:        prefix + "_" + strconv.Itoa(v),
			Name:        name + " (" + tierNames[i%len(tierNames)] + ")",
			Description: strconv.Itoa(v) + " " + unit,
			Category:    category,
			Tier:        i + 1,
			UnlockType:  unlockType,
			UnlockValue: v,
		})
	}
	return out
}
