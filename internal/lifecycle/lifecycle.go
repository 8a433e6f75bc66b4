// Package lifecycle holds the board state machine and the rules tying tasks to boards.
package lifecycle

import (
	"errors"
	"fmt"

	"tasknest/internal/models"
)

// ErrInvalidTransition is returned when an action is not allowed from the current state.
var ErrInvalidTransition = errors.New("invalid board transition")

// Action is an explicit user request to change a board's status.
type Action string

const (
	Archive   Action = "archive"
	Complete  Action = "complete"
	Reopen    Action = "reopen"
	Unarchive Action = "unarchive"
	Toggle    Action = "toggle"
)

type edge struct {
	from   models.BoardStatus
	action Action
}

var transitions = map[edge]models.BoardStatus{
	{models.BoardActive, Archive}:     models.BoardArchived,
	{models.BoardActive, Complete}:    models.BoardCompleted,
	{models.BoardCompleted, Reopen}:   models.BoardActive,
	{models.BoardArchived, Unarchive}: models.BoardActive,
	{models.BoardActive, Toggle}:      models.BoardArchived,
	{models.BoardCompleted, Toggle}:   models.BoardActive,
	{models.BoardArchived, Toggle}:    models.BoardActive,
}

// ParseAction resolves an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Archive, Complete, Reopen, Unarchive, Toggle:
		return a, nil
	}
	return "", models.Invalid("action", "unknown action %q", s)
}

// Apply returns the status reached by performing action on a board in state from.
func Apply(from models.BoardStatus, action Action) (models.BoardStatus, error) {
	to, ok := transitions[edge{from, action}]
	if !ok {
		return from, fmt.Errorf("%w: cannot %s a board that is %s", ErrInvalidTransition, action, from)
	}
	return to, nil
}

// ToggleStatus flips between active and archived; a completed board toggles back to
// active. It never yields completed.
func ToggleStatus(from models.BoardStatus) models.BoardStatus {
	to, err := Apply(from, Toggle)
	if err != nil {
		return from
	}
	return to
}

// CanAssign reports whether new tasks may be placed on the board.
func CanAssign(b models.Board) bool {
	return b.Status == models.BoardActive
}

// AssignableBoards returns the boards offered when creating or moving a task.
func AssignableBoards(boards []models.Board) []models.Board {
	out := make([]models.Board, 0, len(boards))
	for _, b := range boards {
		if CanAssign(b) {
			out = append(out, b)
		}
	}
	return out
}

// CheckAssignment validates placing a task on board. A nil board means the reference is
// dangling.
func CheckAssignment(boardID int64, board *models.Board) error {
	if board == nil {
		return models.Invalid("boardId", "board %d does not exist", boardID)
	}
	if !CanAssign(*board) {
		return models.Invalid("boardId", "board %d is %s and does not accept tasks", boardID, board.Status)
	}
	return nil
}

// NeedsAssignmentCheck reports whether an edit moving a task from current to next board
// must be validated. Keeping the current board is always allowed, even when that board
// has since left the active state.
func NeedsAssignmentCheck(current, next *int64) bool {
	if next == nil {
		return false
	}
	return current == nil || *current != *next
}

// BoardTitle returns the title of the task's board, or fallback when the task has no
// board or its board no longer exists.
func BoardTitle(boards []models.Board, boardID *int64, fallback string) string {
	if boardID == nil {
		return fallback
	}
	for _, b := range boards {
		if b.ID == *boardID {
			return b.Title
		}
	}
	return fallback
}

// ActionFor finds the explicit action that moves a board from one status to another.
// Asking for the current status is a no-op and returns an empty action.
func ActionFor(from, to models.BoardStatus) (Action, error) {
	if from == to {
		return "", nil
	}
	for _, a := range []Action{Archive, Complete, Reopen, Unarchive} {
		if next, ok := transitions[edge{from, a}]; ok && next == to {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
}
