package validator

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func bindJSON(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func examPayload(questions, minutes int) string {
	return `{
		"exam_term": "Sommer 2026",
		"course_name": "Softwarearkitektur",
		"exam_date": "2026-06-12T00:00:00Z",
		"number_of_questions": ` + strconv.Itoa(questions) + `,
		"examination_minutes": ` + strconv.Itoa(minutes) + `,
		"start_time": "09:00"
	}`
}

func TestBindCreateExamRequestBounds(t *testing.T) {
	tests := []struct {
		name      string
		questions int
		minutes   int
		badField  string // empty means the payload must bind cleanly
	}{
		{"valid", 10, 30, ""},
		{"min bounds", 1, 1, ""},
		{"max bounds", 100, 480, ""},
		{"zero questions", 0, 30, "number_of_questions"},
		{"too many questions", 101, 30, "number_of_questions"},
		{"zero minutes", 10, 0, "examination_minutes"},
		{"too many minutes", 10, 481, "examination_minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req model.CreateExamRequest
			fields := bindJSON(t, examPayload(tt.questions, tt.minutes), &req)

			if tt.badField == "" {
				if fields != nil {
					t.Fatalf("Bind() rejected valid payload: %v", fields)
				}
				return
			}
			if fields == nil {
				t.Fatalf("Bind() accepted payload, want error on %q", tt.badField)
			}
			if _, ok := fields[tt.badField]; !ok {
				t.Errorf("Bind() errors = %v, want field %q", fields, tt.badField)
			}
		})
	}
}

func TestBindSubmitGradeRequestScale(t *testing.T) {
	valid := []string{"-3", "0", "2", "4", "7", "10", "12"}
	for _, g := range valid {
		var req model.SubmitGradeRequest
		if fields := bindJSON(t, `{"grade": `+g+`}`, &req); fields != nil {
			t.Errorf("Bind() rejected grade %s: %v", g, fields)
		}
	}

	invalid := []string{"-1", "1", "3", "5", "6", "8", "11", "13"}
	for _, g := range invalid {
		var req model.SubmitGradeRequest
		fields := bindJSON(t, `{"grade": `+g+`}`, &req)
		if fields == nil {
			t.Errorf("Bind() accepted off-scale grade %s", g)
			continue
		}
		if _, ok := fields["grade"]; !ok {
			t.Errorf("Bind() errors for grade %s = %v, want field %q", g, fields, "grade")
		}
	}
}
