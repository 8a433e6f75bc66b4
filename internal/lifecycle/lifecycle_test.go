package lifecycle

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"tasknest/internal/models"
)

func TestApply(t *testing.T) {
	cases := []struct {
		from   models.BoardStatus
		action Action
		want   models.BoardStatus
	}{
		{models.BoardActive, Archive, models.BoardArchived},
		{models.BoardActive, Complete, models.BoardCompleted},
		{models.BoardCompleted, Reopen, models.BoardActive},
		{models.BoardArchived, Unarchive, models.BoardActive},
	}
	for _, c := range cases {
		got, err := Apply(c.from, c.action)
		if err != nil {
			t.Fatalf("%s %s: unexpected error: %v", c.action, c.from, err)
		}
		if got != c.want {
			t.Fatalf("%s %s: expected %s, got %s", c.action, c.from, c.want, got)
		}
	}
}

func TestApplyRejectsUndefinedEdges(t *testing.T) {
	for _, c := range []struct {
		from   models.BoardStatus
		action Action
	}{
		{models.BoardArchived, Complete},
		{models.BoardCompleted, Archive},
		{models.BoardActive, Reopen},
		{models.BoardActive, Unarchive},
		{models.BoardArchived, Reopen},
	} {
		got, err := Apply(c.from, c.action)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s %s: expected invalid transition, got %v", c.action, c.from, err)
		}
		if got != c.from {
			t.Fatalf("%s %s: state changed to %s on failure", c.action, c.from, got)
		}
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	s, err := Apply(models.BoardActive, Archive)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	s, err = Apply(s, Unarchive)
	if err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	if s != models.BoardActive {
		t.Fatalf("expected active after round trip, got %s", s)
	}
}

func TestToggleStatus(t *testing.T) {
	cases := map[models.BoardStatus]models.BoardStatus{
		models.BoardActive:    models.BoardArchived,
		models.BoardArchived:  models.BoardActive,
		models.BoardCompleted: models.BoardActive,
	}
	for from, want := range cases {
		if got := ToggleStatus(from); got != want {
			t.Fatalf("toggle %s: expected %s, got %s", from, want, got)
		}
	}
}

func TestToggleNeverCompletes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.SampledFrom(models.BoardStatuses).Draw(t, "start")
		steps := rapid.IntRange(1, 10).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			s = ToggleStatus(s)
			if s == models.BoardCompleted {
				t.Fatal("toggle produced completed")
			}
		}
	})
}

func TestParseAction(t *testing.T) {
	if a, err := ParseAction("complete"); err != nil || a != Complete {
		t.Fatalf("expected complete, got %q (%v)", a, err)
	}
	_, err := ParseAction("explode")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignableBoards(t *testing.T) {
	boards := []models.Board{
		{ID: 1, Status: models.BoardActive},
		{ID: 2, Status: models.BoardCompleted},
		{ID: 3, Status: models.BoardArchived},
		{ID: 4, Status: models.BoardActive},
	}
	got := AssignableBoards(boards)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 4 {
		t.Fatalf("expected boards 1 and 4, got %+v", got)
	}
}

func TestCheckAssignment(t *testing.T) {
	var verr *models.ValidationError
	if err := CheckAssignment(9, nil); !errors.As(err, &verr) || verr.Field != "boardId" {
		t.Fatalf("dangling board: expected boardId validation error, got %v", err)
	}
	archived := &models.Board{ID: 3, Status: models.BoardArchived}
	if err := CheckAssignment(3, archived); !errors.As(err, &verr) {
		t.Fatalf("archived board: expected validation error, got %v", err)
	}
	if err := CheckAssignment(1, &models.Board{ID: 1, Status: models.BoardActive}); err != nil {
		t.Fatalf("active board: unexpected error %v", err)
	}
}

func TestNeedsAssignmentCheck(t *testing.T) {
	one, two := int64(1), int64(2)
	if NeedsAssignmentCheck(&one, nil) {
		t.Fatal("no board change must not be checked")
	}
	if NeedsAssignmentCheck(&one, &one) {
		t.Fatal("keeping the same board must not be checked")
	}
	if !NeedsAssignmentCheck(&one, &two) || !NeedsAssignmentCheck(nil, &two) {
		t.Fatal("moving to another board must be checked")
	}
}

func TestBoardTitle(t *testing.T) {
	boards := []models.Board{{ID: 1, Title: "Home"}}
	one, gone := int64(1), int64(7)
	if got := BoardTitle(boards, &one, "No board"); got != "Home" {
		t.Fatalf("expected Home, got %q", got)
	}
	if got := BoardTitle(boards, &gone, "No board"); got != "No board" {
		t.Fatalf("expected fallback for deleted board, got %q", got)
	}
	if got := BoardTitle(boards, nil, "No board"); got != "No board" {
		t.Fatalf("expected fallback for unassigned task, got %q", got)
	}
}

func TestActionFor(t *testing.T) {
	if a, err := ActionFor(models.BoardActive, models.BoardActive); err != nil || a != "" {
		t.Fatalf("same status should be a no-op, got %q (%v)", a, err)
	}
	if a, err := ActionFor(models.BoardActive, models.BoardCompleted); err != nil || a != Complete {
		t.Fatalf("expected complete, got %q (%v)", a, err)
	}
	if a, err := ActionFor(models.BoardArchived, models.BoardActive); err != nil || a != Unarchive {
		t.Fatalf("expected unarchive, got %q (%v)", a, err)
	}
	if _, err := ActionFor(models.BoardArchived, models.BoardCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}
