package model

import "testing"

func TestGradeValid(t *testing.T) {
	tests := []struct {
		grade Grade
		want  bool
	}{
		{GradeMinusThree, true},
		{GradeZero, true},
		{GradeTwo, true},
		{GradeFour, true},
		{GradeSeven, true},
		{GradeTen, true},
		{GradeTwelve, true},
		{Grade(-1), false},
		{Grade(1), false},
		{Grade(3), false},
		{Grade(5), false},
		{Grade(6), false},
		{Grade(8), false},
		{Grade(11), false},
		{Grade(13), false},
	}

	for _, tt := range tests {
		if got := tt.grade.Valid(); got != tt.want {
			t.Errorf("Grade(%d).Valid() = %v, want %v", tt.grade, got, tt.want)
		}
	}
}

func TestGradePassing(t *testing.T) {
	tests := []struct {
		grade Grade
		want  bool
	}{
		{GradeMinusThree, false},
		{GradeZero, false},
		{GradeTwo, true},
		{GradeFour, true},
		{GradeSeven, true},
		{GradeTen, true},
		{GradeTwelve, true},
	}

	for _, tt := range tests {
		if got := tt.grade.Passing(); got != tt.want {
			t.Errorf("Grade(%d).Passing() = %v, want %v", tt.grade, got, tt.want)
		}
	}
}

func TestGradeScaleCoversAllValidGrades(t *testing.T) {
	if len(GradeScale) != 7 {
		t.Fatalf("scale has %d grades, want 7", len(GradeScale))
	}
	for _, g := range GradeScale {
		if !g.Valid() {
			t.Errorf("scale grade %d reported invalid", g)
		}
	}
}
