package assessment

import (
	"errors"
	"testing"
	"time"

	"github.com/mbolis/wellness-hub/model"
)

func TestScaleTier(t *testing.T) {
	cases := []struct {
		value int
		tier  string
	}{
		{0, TierLow},
		{1, TierLow},
		{2, TierLow},
		{3, TierLow},
		{4, TierMid},
		{5, TierMid},
		{6, TierMid},
		{7, TierHigh},
		{9, TierHigh},
		{10, TierHigh},
	}
	for _, c := range cases {
		if got := ScaleTier(c.value); got != c.tier {
			t.Errorf("ScaleTier(%d) = %s, want %s", c.value, got, c.tier)
		}
	}
}

func TestReadScale(t *testing.T) {
	cases := map[string]model.ScaleReading{
		"2":    {Value: 2, Percent: 20, Tier: TierLow},
		" 6 ":  {Value: 6, Percent: 60, Tier: TierMid},
		"9":    {Value: 9, Percent: 90, Tier: TierHigh},
		"42":   {Value: 42, Percent: 100, Tier: TierHigh},
		"calm": {Value: 0, Percent: 0, Tier: TierLow},
	}
	for text, want := range cases {
		if got := ReadScale(text); got != want {
			t.Errorf("ReadScale(%q) = %+v, want %+v", text, got, want)
		}
	}
}

func TestGetOneCompleted(t *testing.T) {
	f := newFixture(t)
	in := checkIn(f.alice.UserID, f.bob.UserID)
	in.Questions = append(in.Questions, QuestionInput{Text: "Anything else?", Type: model.QuestionText})
	a := f.create(in)
	assignment := f.assignmentOf(a.ID, f.alice.UserID)

	if _, err := f.svc.GetOneCompleted(ctx, f.admin, assignment); !errors.Is(err, ErrNotFound) {
		t.Errorf("pending assignment: %v", err)
	}

	answers := answerAll(a)
	answers[a.Questions[0].ID] = model.Single("3")
	answers[a.Questions[2].ID] = model.Single("<b>fine</b>")
	if err := f.svc.SubmitResponses(ctx, f.alice, assignment, answers); err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.GetOneCompleted(ctx, f.alice, assignment)
	if err != nil {
		t.Fatal(err)
	}
	if res.StudentName != "Alice" || res.CreatorName != "Dana Counselor" || res.AssessmentTitle != "Weekly check-in" {
		t.Errorf("header = %+v", res.Assignment)
	}
	if res.SubmittedAt == nil || !res.SubmittedAt.Equal(f.clock) {
		t.Errorf("submitted_at = %v", res.SubmittedAt)
	}
	if len(res.Items) != 3 {
		t.Fatalf("items = %+v", res.Items)
	}
	for i, item := range res.Items {
		if item.Question.ID != a.Questions[i].ID {
			t.Errorf("item %d is question %d", i, item.Question.ID)
		}
	}

	scale := res.Items[0]
	if scale.Scale == nil || *scale.Scale != (model.ScaleReading{Value: 3, Percent: 30, Tier: TierLow}) {
		t.Errorf("scale reading = %+v", scale.Scale)
	}
	multi := res.Items[1]
	if multi.Text != "A, B" || !multi.Response.Answer.IsMulti() || multi.Scale != nil {
		t.Errorf("multi item = %+v", multi)
	}
	text := res.Items[2]
	if text.Text != "<b>fine</b>" || text.Response.Answer.IsMulti() {
		t.Errorf("text item = %+v", text)
	}

	if _, err := f.svc.GetOneCompleted(ctx, f.admin, assignment); err != nil {
		t.Errorf("admin: %v", err)
	}
	if _, err := f.svc.GetOneCompleted(ctx, f.bob, assignment); !errors.Is(err, ErrNotFound) {
		t.Errorf("other student: %v", err)
	}
}

func TestListCompleted(t *testing.T) {
	f := newFixture(t)
	a := f.create(checkIn(f.alice.UserID, f.bob.UserID))
	if err := f.svc.SubmitResponses(ctx, f.alice, f.assignmentOf(a.ID, f.alice.UserID), answerAll(a)); err != nil {
		t.Fatal(err)
	}

	own, err := f.svc.ListCompletedForStudent(ctx, f.alice, f.alice.UserID)
	if err != nil || len(own) != 1 {
		t.Errorf("own = %+v, %v", own, err)
	}
	if _, err := f.svc.ListCompletedForStudent(ctx, f.bob, f.alice.UserID); !errors.Is(err, ErrForbidden) {
		t.Errorf("other student: %v", err)
	}
	none, err := f.svc.ListCompletedForStudent(ctx, f.admin, f.bob.UserID)
	if err != nil || len(none) != 0 {
		t.Errorf("bob = %+v, %v", none, err)
	}

	byAssessment, err := f.svc.ListCompletedForAssessment(ctx, f.admin, a.ID)
	if err != nil || len(byAssessment) != 1 || byAssessment[0].StudentID != f.alice.UserID {
		t.Errorf("by assessment = %+v, %v", byAssessment, err)
	}
	if _, err := f.svc.ListCompletedForAssessment(ctx, f.alice, a.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("student: %v", err)
	}

	today, err := f.svc.ListCompleted(ctx, f.admin, 0, f.clock)
	if err != nil || len(today) != 1 {
		t.Errorf("today = %+v, %v", today, err)
	}
	tomorrow, err := f.svc.ListCompleted(ctx, f.admin, 0, f.clock.Add(24*time.Hour))
	if err != nil || len(tomorrow) != 0 {
		t.Errorf("tomorrow = %+v, %v", tomorrow, err)
	}
}
