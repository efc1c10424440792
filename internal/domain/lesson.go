package domain

import (
	"context"
	"time"
)

type LessonModel struct {
	ID               string  `json:"id"`
	SubjectID        string  `json:"subject_id"`
	Title            string  `json:"title"`
	Order            int     `json:"order"`
	DurationSeconds  float64 `json:"duration_seconds"`
	HasExam          bool    `json:"has_exam"`
	ShuffleQuestions bool    `json:"-"`
}

// LessonProgressModel authoritative per-learner-per-lesson watch record.
// FurthestSeconds is non-decreasing for a given (learner, lesson) pair.
type LessonProgressModel struct {
	LearnerID       string     `json:"-"`
	LessonID        string     `json:"lesson_id"`
	FurthestSeconds float64    `json:"furthest_reached_seconds"`
	DurationSeconds float64    `json:"video_duration_seconds"`
	Percent         float64    `json:"progress_percent"`
	Title           string     `json:"title,omitempty"`
	CreatedAt       *time.Time `json:"-"`
	UpdatedAt       *time.Time `json:"-"`
}

// ProgressPercent furthest watch time over duration, capped at 100.
// A zero duration yields 0 rather than a division error.
func ProgressPercent(furthestSeconds, durationSeconds float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	percent := furthestSeconds / durationSeconds * 100
	if percent > 100 {
		return 100
	}
	if percent < 0 {
		return 0
	}
	return percent
}

// LessonStatusModel aggregated lesson view for the learner
type LessonStatusModel struct {
	LessonID       string   `json:"lesson_id"`
	Percent        float64  `json:"progress_percent"`
	Unlocked       bool     `json:"unlocked"`
	RemainingTries int      `json:"remaining_tries"`
	Blockers       []string `json:"blockers"`
}

type LessonRepository interface {
	GetLesson(ctx context.Context, lessonID string) (*LessonModel, error)
	// GetSubjectLessons lessons of a subject ordered by their position
	GetSubjectLessons(ctx context.Context, subjectID string) ([]*LessonModel, error)
	IsSubjectAssigned(ctx context.Context, companyID, subjectID string) (bool, error)
	IsLessonActive(ctx context.Context, companyID, lessonID string) (bool, error)
}
