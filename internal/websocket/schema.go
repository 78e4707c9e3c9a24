package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSnapshot Event = "snapshot"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// ResultPayload describes the most recently saved result.
type ResultPayload struct {
	StudentNo        string `json:"student_no"`
	StudentName      string `json:"student_name"`
	QuestionNumber   int    `json:"question_number"`
	Grade            int    `json:"grade"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
}

// StudentPayload describes the student currently up for examination.
type StudentPayload struct {
	ID        string `json:"id"`
	StudentNo string `json:"student_no"`
	Name      string `json:"name"`
}

// SnapshotResponse is pushed to the client whenever the session changes,
// and once per second while an examination is running.
type SnapshotResponse struct {
	Event            Event           `json:"event"`
	State            string          `json:"state"`
	ExamID           string          `json:"exam_id"`
	CurrentStudent   *StudentPayload `json:"current_student,omitempty"`
	Position         int             `json:"position"`
	TotalStudents    int             `json:"total_students"`
	GradedCount      int             `json:"graded_count"`
	QuestionNumber   int             `json:"question_number,omitempty"`
	ElapsedSeconds   int             `json:"elapsed_seconds"`
	RemainingSeconds int             `json:"remaining_seconds"`
	ExamCompleted    bool            `json:"exam_completed"`
	LastResult       *ResultPayload  `json:"last_result,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
