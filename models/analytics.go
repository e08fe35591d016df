package models

// QuizStats summarises a user's results for the statistics dashboard.
type QuizStats struct {
	TotalQuizzes     int           `json:"totalQuizzes"`
	AverageScore     float64       `json:"averageScore"` // mean percentage
	Accuracy         float64       `json:"accuracy"`     // correct answers / questions seen
	BestScore        float64       `json:"bestScore"`
	CurrentStreak    int           `json:"currentStreak"` // consecutive days ending today
	TotalTimeSeconds float64       `json:"totalTimeSeconds"`
	AvgTimeSeconds   float64       `json:"avgTimeSeconds"`
	FastestSeconds   float64       `json:"fastestSeconds"`
	BestTopic        *TopicStat    `json:"bestTopic,omitempty"`
	Improvement      *float64      `json:"improvement,omitempty"` // points between first and last fifth
	Topics           []TopicStat   `json:"topics"`
	Trend            []TrendPoint  `json:"trend"`
	Recent           []RecentQuiz  `json:"recent"`
	Achievements     []Achievement `json:"achievements"`
}

type TopicStat struct {
	Topic    string  `json:"topic"`
	Quizzes  int     `json:"quizzes"`
	Accuracy float64 `json:"accuracy"`
}

type TrendPoint struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Accuracy float64 `json:"accuracy"`
	Score    int     `json:"score"`
	Total    int     `json:"total"`
}

type RecentQuiz struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Percentage int    `json:"percentage"`
	Date       string `json:"date"`
}

type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}
