package services

import (
	"math"
	"sort"
	"time"

	"github.com/quizwhiz/quizwhiz-backend/models"
)

// ComputeStats builds the dashboard summary for results of one user.
// Dates are bucketed into days in loc.
func ComputeStats(results []models.Result, now time.Time, loc *time.Location) models.QuizStats {
	stats := models.QuizStats{
		Topics:       []models.TopicStat{},
		Trend:        []models.TrendPoint{},
		Recent:       []models.RecentQuiz{},
		Achievements: achievements(nil, 0, 0, 0),
	}
	if len(results) == 0 {
		return stats
	}
	if loc == nil {
		loc = time.UTC
	}

	sorted := make([]models.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	var totalPct, totalCorrect, totalQuestions int
	fastest := math.MaxFloat64
	for _, r := range sorted {
		pct := percentOf(r)
		totalPct += pct
		totalCorrect += r.Score
		totalQuestions += r.TotalQuestions
		stats.TotalTimeSeconds += r.TimeTaken
		if r.TimeTaken < fastest {
			fastest = r.TimeTaken
		}
		if float64(pct) > stats.BestScore {
			stats.BestScore = float64(pct)
		}
	}

	stats.TotalQuizzes = len(sorted)
	stats.AverageScore = round1(float64(totalPct) / float64(len(sorted)))
	if totalQuestions > 0 {
		stats.Accuracy = round1(float64(totalCorrect) / float64(totalQuestions) * 100)
	}
	stats.AvgTimeSeconds = stats.TotalTimeSeconds / float64(len(sorted))
	stats.FastestSeconds = fastest
	stats.CurrentStreak = streak(sorted, now, loc)
	stats.Topics = topicStats(sorted)
	if len(stats.Topics) > 0 {
		best := stats.Topics[0]
		for _, t := range stats.Topics[1:] {
			if t.Accuracy > best.Accuracy {
				best = t
			}
		}
		stats.BestTopic = &best
	}
	stats.Improvement = improvement(sorted)

	for i := len(sorted) - 1; i >= 0; i-- {
		r := sorted[i]
		stats.Trend = append(stats.Trend, models.TrendPoint{
			Date:     r.Date.In(loc).Format("2006-01-02"),
			Accuracy: round1(accuracy(r)),
			Score:    r.Score,
			Total:    r.TotalQuestions,
		})
	}
	for i := 0; i < len(sorted) && i < 5; i++ {
		r := sorted[i]
		stats.Recent = append(stats.Recent, models.RecentQuiz{
			Topic:      r.Topic,
			Difficulty: string(r.Difficulty),
			Percentage: percentOf(r),
			Date:       r.Date.In(loc).Format("2006-01-02"),
		})
	}
	stats.Achievements = achievements(sorted, stats.AverageScore, stats.BestScore, stats.CurrentStreak)
	return stats
}

func accuracy(r models.Result) float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalQuestions) * 100
}

func percentOf(r models.Result) int {
	return int(math.Round(accuracy(r)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// streak counts consecutive days with at least one quiz, ending today.
// results must be sorted newest first.
func streak(results []models.Result, now time.Time, loc *time.Location) int {
	day := truncateDay(now.In(loc))
	count := 0
	seen := make(map[time.Time]bool)
	for _, r := range results {
		d := truncateDay(r.Date.In(loc))
		if seen[d] {
			continue
		}
		seen[d] = true
		if !d.Equal(day) {
			break
		}
		count++
		day = day.AddDate(0, 0, -1)
	}
	return count
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func topicStats(results []models.Result) []models.TopicStat {
	type agg struct {
		quizzes, score, total int
	}
	order := []string{}
	byTopic := map[string]*agg{}
	for _, r := range results {
		a, ok := byTopic[r.Topic]
		if !ok {
			a = &agg{}
			byTopic[r.Topic] = a
			order = append(order, r.Topic)
		}
		a.quizzes++
		a.score += r.Score
		a.total += r.TotalQuestions
	}

	out := make([]models.TopicStat, 0, len(order))
	for _, topic := range order {
		a := byTopic[topic]
		acc := 0.0
		if a.total > 0 {
			acc = round1(float64(a.score) / float64(a.total) * 100)
		}
		out = append(out, models.TopicStat{Topic: topic, Quizzes: a.quizzes, Accuracy: acc})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quizzes > out[j].Quizzes })
	return out
}

// improvement compares mean accuracy of the oldest and newest fifth of
// results. results must be sorted newest first.
func improvement(results []models.Result) *float64 {
	if len(results) < 2 {
		return nil
	}
	segment := len(results) / 5
	if segment < 1 {
		segment = 1
	}
	mean := func(rs []models.Result) float64 {
		sum := 0.0
		for _, r := range rs {
			sum += accuracy(r)
		}
		return sum / float64(len(rs))
	}
	newest := mean(results[:segment])
	oldest := mean(results[len(results)-segment:])
	diff := round1(newest - oldest)
	return &diff
}

func achievements(results []models.Result, avg, best float64, streakDays int) []models.Achievement {
	speedy := false
	for _, r := range results {
		if r.TimeTaken < 120 {
			speedy = true
			break
		}
	}
	return []models.Achievement{
		{Name: "Quiz Master", Description: "Complete 100 quizzes", Earned: len(results) >= 100},
		{Name: "Perfect Score", Description: "Get 100% on any quiz", Earned: best >= 100},
		{Name: "Speed Demon", Description: "Complete quiz in under 2 minutes", Earned: speedy},
		{Name: "Scholar", Description: "Average score above 85%", Earned: len(results) > 0 && avg > 85},
		{Name: "Consistent", Description: "30-day streak", Earned: streakDays >= 30},
	}
}
