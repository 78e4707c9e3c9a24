package worker

import (
	"testing"

	"github.com/google/uuid"
)

func TestDedupeExamIDs(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	got := DedupeExamIDs([]string{
		a.String(),
		b.String(),
		a.String(),
		"not-a-uuid",
		a.String(),
	})

	if len(got) != 2 {
		t.Fatalf("got %d IDs, want 2", len(got))
	}
	if got[0] != a || got[1] != b {
		t.Errorf("order not preserved: got %v, want [%s %s]", got, a, b)
	}
}

func TestDedupeExamIDsEmpty(t *testing.T) {
	if got := DedupeExamIDs(nil); len(got) != 0 {
		t.Errorf("got %d IDs from nil input, want 0", len(got))
	}
}
