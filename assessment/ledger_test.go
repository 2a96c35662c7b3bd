package assessment

import (
	"errors"
	"testing"
	"time"

	"github.com/mbolis/wellness-hub/model"
)

func TestListAssignmentsOrderAndFilters(t *testing.T) {
	f := newFixture(t)
	first := f.create(checkIn(f.alice.UserID, f.bob.UserID))
	second := f.create(checkIn(f.alice.UserID))
	third := f.create(checkIn(f.alice.UserID))

	if err := f.svc.SubmitResponses(ctx, f.alice, f.assignmentOf(first.ID, f.alice.UserID), answerAll(first)); err != nil {
		t.Fatal(err)
	}
	f.clock = f.clock.Add(26 * time.Hour)
	if err := f.svc.SubmitResponses(ctx, f.alice, f.assignmentOf(third.ID, f.alice.UserID), answerAll(third)); err != nil {
		t.Fatal(err)
	}

	mine, err := f.svc.ListAssignments(ctx, f.alice, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	wantOrder := []int64{second.ID, third.ID, first.ID}
	if len(mine) != len(wantOrder) {
		t.Fatalf("got %d assignments", len(mine))
	}
	for i, id := range wantOrder {
		if mine[i].AssessmentID != id {
			t.Errorf("position %d: assessment %d, want %d", i, mine[i].AssessmentID, id)
		}
	}
	if mine[0].Status != model.StatusPending || mine[0].SubmittedAt != nil {
		t.Errorf("pending row = %+v", mine[0])
	}
	if mine[1].SubmittedAt == nil || !mine[1].SubmittedAt.Equal(f.clock) {
		t.Errorf("completed row = %+v", mine[1])
	}

	// students cannot widen the filter to someone else
	spoofed, err := f.svc.ListAssignments(ctx, f.bob, Filter{StudentID: f.alice.UserID})
	if err != nil {
		t.Fatal(err)
	}
	if len(spoofed) != 1 || spoofed[0].StudentID != f.bob.UserID || spoofed[0].StudentName != "bob" {
		t.Errorf("bob sees %+v", spoofed)
	}

	byAssessment, err := f.svc.ListAssignments(ctx, f.admin, Filter{AssessmentID: first.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(byAssessment) != 2 {
		t.Errorf("assessment filter = %d rows", len(byAssessment))
	}

	pending, err := f.svc.ListAssignments(ctx, f.admin, Filter{Status: model.StatusPending})
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Errorf("pending filter = %d rows", len(pending))
	}

	onDay, err := f.svc.ListAssignments(ctx, f.admin, Filter{SubmittedOn: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	if len(onDay) != 1 || onDay[0].AssessmentID != third.ID {
		t.Errorf("day filter = %+v", onDay)
	}

	if _, err := f.svc.ListAssignments(ctx, model.Caller{UserID: 1}, Filter{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("anonymous: %v", err)
	}
}
