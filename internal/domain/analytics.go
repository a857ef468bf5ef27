package domain

// ConfusionCell counts how often SelectedAnswer was picked when CorrectAnswer was right.
type ConfusionCell struct {
	CorrectAnswer  string `json:"correctAnswer"`
	SelectedAnswer string `json:"selectedAnswer"`
	Count          int    `json:"count"`
}

// Accuracy aggregates answers under one key (question id or fit category).
type Accuracy struct {
	Key           string  `json:"key"`
	Label         string  `json:"label,omitempty"`
	Attempts      int     `json:"attempts"`
	Correct       int     `json:"correct"`
	Accuracy      float64 `json:"accuracy"`
	AvgResponseMs int64   `json:"avgResponseMs"`
}

// ConfusionMatrix is the correct × selected answer table with per fit category accuracy.
type ConfusionMatrix struct {
	TotalAnswers  int             `json:"totalAnswers"`
	Cells         []ConfusionCell `json:"cells"`
	FitCategories []Accuracy      `json:"fitCategories"`
}

// WeakPoints lists questions and fit categories answered below the accuracy threshold.
type WeakPoints struct {
	Questions     []Accuracy `json:"questions"`
	FitCategories []Accuracy `json:"fitCategories"`
}

// TrainingPriority ranks a fit category by how urgently it needs training.
type TrainingPriority struct {
	FitCategory   string  `json:"fitCategory"`
	Attempts      int     `json:"attempts"`
	ErrorRate     float64 `json:"errorRate"`
	AvgResponseMs int64   `json:"avgResponseMs"`
	Priority      float64 `json:"priority"`
}

// AnalyticsOverview bundles the three aggregates.
type AnalyticsOverview struct {
	Confusion  ConfusionMatrix    `json:"confusion"`
	WeakPoints WeakPoints         `json:"weakPoints"`
	Priorities []TrainingPriority `json:"priorities"`
}
