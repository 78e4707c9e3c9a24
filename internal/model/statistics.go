package model

import "github.com/google/uuid"

// ExamStatistics holds the aggregate view of a single exam's results. It is
// recomputed by the statistics worker and cached in Redis.
type ExamStatistics struct {
	ExamID         uuid.UUID     `json:"exam_id"`
	StudentCount   int           `json:"student_count"`
	ResultCount    int           `json:"result_count"`
	AverageGrade   float64       `json:"average_grade"`
	PassRate       float64       `json:"pass_rate"`
	Distribution   map[Grade]int `json:"distribution"`
	AverageTimeSec int           `json:"average_time_seconds"`
}
