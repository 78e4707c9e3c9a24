package model

// Grade is a mark on the Danish 7-trinsskala.
type Grade int

const (
	GradeMinusThree Grade = -3
	GradeZero       Grade = 0
	GradeTwo        Grade = 2
	GradeFour       Grade = 4
	GradeSeven      Grade = 7
	GradeTen        Grade = 10
	GradeTwelve     Grade = 12
)

// GradeScale lists the valid grades in ascending order.
var GradeScale = []Grade{
	GradeMinusThree,
	GradeZero,
	GradeTwo,
	GradeFour,
	GradeSeven,
	GradeTen,
	GradeTwelve,
}

// Valid reports whether g is a member of the scale.
func (g Grade) Valid() bool {
	for _, v := range GradeScale {
		if g == v {
			return true
		}
	}
	return false
}

// Passing reports whether g is a passing grade (02 or above).
func (g Grade) Passing() bool {
	return g >= GradeTwo
}
