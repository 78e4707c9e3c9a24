package websocket

import (
	"time"

	"github.com/eksamina/eksaminator-backend/internal/session"
	"github.com/gorilla/websocket"
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	return conn.ReadJSON(v)
}

// NewSnapshotResponse converts an engine snapshot into its wire form.
func NewSnapshotResponse(snap session.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		Event:            EventSnapshot,
		State:            string(snap.State),
		ExamID:           snap.ExamID.String(),
		Position:         snap.Position,
		TotalStudents:    snap.TotalStudents,
		GradedCount:      snap.GradedCount,
		QuestionNumber:   snap.QuestionNumber,
		ElapsedSeconds:   snap.ElapsedSeconds,
		RemainingSeconds: snap.RemainingSeconds,
		ExamCompleted:    snap.ExamCompleted,
	}
	if snap.CurrentStudent != nil {
		resp.CurrentStudent = &StudentPayload{
			ID:        snap.CurrentStudent.ID.String(),
			StudentNo: snap.CurrentStudent.StudentNo,
			Name:      snap.CurrentStudent.Name,
		}
	}
	if snap.LastResult != nil {
		resp.LastResult = &ResultPayload{
			StudentNo:        snap.LastResult.StudentNo,
			StudentName:      snap.LastResult.StudentName,
			QuestionNumber:   snap.LastResult.QuestionNumber,
			Grade:            int(snap.LastResult.Grade),
			TimeSpentSeconds: snap.LastResult.TimeSpentSeconds,
		}
	}
	return resp
}
