package models

import (
	"time"
)

// BoardStatus is the lifecycle state of a board.
type BoardStatus string

const (
	BoardActive    BoardStatus = "active"
	BoardCompleted BoardStatus = "completed"
	BoardArchived  BoardStatus = "archived"
)

// TaskStatus is the board column a task sits in.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// BoardStatuses, TaskStatuses and Priorities list the canonical values in display order.
var (
	BoardStatuses = []BoardStatus{BoardActive, BoardCompleted, BoardArchived}
	TaskStatuses  = []TaskStatus{StatusToDo, StatusInProgress, StatusDone}
	Priorities    = []Priority{PriorityLow, PriorityMedium, PriorityHigh}
)

// Valid reports whether s is a canonical board status.
func (s BoardStatus) Valid() bool {
	switch s {
	case BoardActive, BoardCompleted, BoardArchived:
		return true
	}
	return false
}

// Valid reports whether s is a canonical task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Valid reports whether p is a canonical priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities for sorting: high=3, medium=2, low=1, anything else 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Board groups related tasks and carries its own lifecycle status.
type Board struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      BoardStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// BoardStats are derived per-board counters. They are never persisted.
type BoardStats struct {
	TaskCount       int `json:"taskCount"`
	CompletedCount  int `json:"completedCount"`
	ProgressPercent int `json:"progressPercent"`
}

// BoardWithStats is a board enriched with freshly computed statistics.
type BoardWithStats struct {
	Board
	Stats BoardStats `json:"stats"`
}

// BoardWithTasks is the detail view of a board.
type BoardWithTasks struct {
	Board
	Stats BoardStats `json:"stats"`
	Tasks []Task     `json:"tasks"`
}

// Task represents a single card on a board.
type Task struct {
	ID          int64      `json:"id"`
	BoardID     *int64     `json:"boardId"`
	UserID      *int64     `json:"userId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *Date      `json:"dueDate,omitempty"`
	IsArchived  bool       `json:"isArchived"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// OnBoard reports whether the task references the given board.
func (t Task) OnBoard(boardID int64) bool {
	return t.BoardID != nil && *t.BoardID == boardID
}

// TaskDetail is a task with its related board and owner resolved.
type TaskDetail struct {
	Task
	Board *Board `json:"board"`
	User  *User  `json:"user,omitempty"`
}

// User owns tasks on the API side.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserWithTasks is the detail view of a user.
type UserWithTasks struct {
	User
	Tasks []Task `json:"tasks"`
}
