package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tasknest/internal/lifecycle"
	"tasknest/internal/models"
)

const taskColumns = `id, board_id, user_id, title, description, status, priority, due_date, is_archived, created_at, updated_at`

// ArchivedMode selects how archived tasks take part in a listing.
type ArchivedMode int

const (
	// ExcludeArchived is the default view.
	ExcludeArchived ArchivedMode = iota
	// OnlyArchived returns just the archived tasks.
	OnlyArchived
	// IncludeArchived returns every task.
	IncludeArchived
)

// TaskQuery narrows ListTasks at the SQL layer.
type TaskQuery struct {
	Status   *models.TaskStatus
	BoardID  *int64
	UserID   *int64
	Archived ArchivedMode
}

// TaskInput carries the fields of a new task.
type TaskInput struct {
	BoardID     int64
	UserID      *int64
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.Priority
	DueDate     *models.Date
}

// TaskPatch holds the fields of a partial task update. Nil fields are left unchanged.
type TaskPatch struct {
	BoardID      *int64
	UserID       *int64
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.Priority
	DueDate      *models.Date
	ClearDueDate bool
	IsArchived   *bool
}

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var (
		t        models.Task
		boardID  sql.NullInt64
		userID   sql.NullInt64
		status   string
		priority string
		dueDate  sql.NullString
	)
	err := row.Scan(&t.ID, &boardID, &userID, &t.Title, &t.Description, &status, &priority, &dueDate, &t.IsArchived, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if boardID.Valid {
		t.BoardID = &boardID.Int64
	}
	if userID.Valid {
		t.UserID = &userID.Int64
	}
	t.Status = models.TaskStatus(status)
	t.Priority = models.Priority(priority)
	if dueDate.Valid && dueDate.String != "" {
		d, err := models.ParseDate(dueDate.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("task %d: %w", t.ID, err)
		}
		t.DueDate = &d
	}
	return t, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullDate(d *models.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

// ListTasks returns tasks matching q in creation order.
func (s *Store) ListTasks(ctx context.Context, q TaskQuery) ([]models.Task, error) {
	var (
		where []string
		args  []any
	)
	if q.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*q.Status))
	}
	if q.BoardID != nil {
		where = append(where, "board_id = ?")
		args = append(args, *q.BoardID)
	}
	if q.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *q.UserID)
	}
	switch q.Archived {
	case ExcludeArchived:
		where = append(where, "is_archived = 0")
	case OnlyArchived:
		where = append(where, "is_archived = 1")
	}

	stmt := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		stmt += ` WHERE ` + strings.Join(where, " AND ")
	}
	stmt += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// GetTaskDetail retrieves a task together with its board and owner. A board or user
// that has since been deleted is reported as nil.
func (s *Store) GetTaskDetail(ctx context.Context, id int64) (models.TaskDetail, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return models.TaskDetail{}, err
	}
	detail := models.TaskDetail{Task: t}
	if t.BoardID != nil {
		b, err := s.GetBoard(ctx, *t.BoardID)
		switch {
		case err == nil:
			detail.Board = &b
		case !errors.Is(err, ErrNotFound):
			return models.TaskDetail{}, err
		}
	}
	if t.UserID != nil {
		u, err := s.GetUser(ctx, *t.UserID)
		switch {
		case err == nil:
			detail.User = &u
		case !errors.Is(err, ErrNotFound):
			return models.TaskDetail{}, err
		}
	}
	return detail, nil
}

// lookupBoard returns the board or nil when it does not exist.
func (s *Store) lookupBoard(ctx context.Context, id int64) (*models.Board, error) {
	b, err := s.GetBoard(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) checkUser(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.GetUser(ctx, *id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Invalid("userId", "user %d does not exist", *id)
		}
		return err
	}
	return nil
}

// CreateTask inserts a new task on an active board. Missing status defaults to todo
// and missing priority to medium.
func (s *Store) CreateTask(ctx context.Context, in TaskInput) (models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, models.Invalid("title", "must not be empty")
	}
	if in.Status == "" {
		in.Status = models.StatusToDo
	}
	if !in.Status.Valid() {
		return models.Task{}, models.Invalid("status", "unknown status %q", in.Status)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return models.Task{}, models.Invalid("priority", "unknown priority %q", in.Priority)
	}

	board, err := s.lookupBoard(ctx, in.BoardID)
	if err != nil {
		return models.Task{}, err
	}
	if err := lifecycle.CheckAssignment(in.BoardID, board); err != nil {
		return models.Task{}, err
	}
	if err := s.checkUser(ctx, in.UserID); err != nil {
		return models.Task{}, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(board_id, user_id, title, description, status, priority, due_date) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		in.BoardID, nullInt(in.UserID), title, strings.TrimSpace(in.Description), string(in.Status), string(in.Priority), nullDate(in.DueDate))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	return s.GetTask(ctx, id)
}

// UpdateTask applies patch to a task. Moving a task to another board requires that
// board to be active; keeping the current board never does.
func (s *Store) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (models.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Task{}, models.Invalid("title", "must not be empty")
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return models.Task{}, models.Invalid("status", "unknown status %q", *patch.Status)
		}
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return models.Task{}, models.Invalid("priority", "unknown priority %q", *patch.Priority)
		}
		t.Priority = *patch.Priority
	}
	if patch.ClearDueDate {
		t.DueDate = nil
	} else if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	if patch.IsArchived != nil {
		t.IsArchived = *patch.IsArchived
	}
	if lifecycle.NeedsAssignmentCheck(t.BoardID, patch.BoardID) {
		board, err := s.lookupBoard(ctx, *patch.BoardID)
		if err != nil {
			return models.Task{}, err
		}
		if err := lifecycle.CheckAssignment(*patch.BoardID, board); err != nil {
			return models.Task{}, err
		}
		t.BoardID = patch.BoardID
	}
	if patch.UserID != nil {
		if err := s.checkUser(ctx, patch.UserID); err != nil {
			return models.Task{}, err
		}
		t.UserID = patch.UserID
	}

	_, err = s.db.ExecContext(ctx, `UPDATE tasks SET board_id = ?, user_id = ?, title = ?, description = ?, status = ?, priority = ?, due_date = ?, is_archived = ? WHERE id = ?`,
		nullInt(t.BoardID), nullInt(t.UserID), t.Title, t.Description, string(t.Status), string(t.Priority), nullDate(t.DueDate), t.IsArchived, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return s.GetTask(ctx, id)
}

// ArchiveTask soft-deletes a task.
func (s *Store) ArchiveTask(ctx context.Context, id int64) (models.Task, error) {
	archived := true
	return s.UpdateTask(ctx, id, TaskPatch{IsArchived: &archived})
}

// DuplicateTask copies a task onto the same board, appending suffix to the title. The
// copy is a new task, so the board must still exist and be active.
func (s *Store) DuplicateTask(ctx context.Context, id int64, suffix string) (models.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if t.BoardID == nil {
		return models.Task{}, models.Invalid("boardId", "task %d has no board to copy onto", id)
	}
	board, err := s.lookupBoard(ctx, *t.BoardID)
	if err != nil {
		return models.Task{}, err
	}
	if err := lifecycle.CheckAssignment(*t.BoardID, board); err != nil {
		return models.Task{}, err
	}
	title := strings.TrimSpace(t.Title + " " + suffix)

	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(board_id, user_id, title, description, status, priority, due_date, is_archived) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt(t.BoardID), nullInt(t.UserID), title, t.Description, string(t.Status), string(t.Priority), nullDate(t.DueDate), t.IsArchived)
	if err != nil {
		return models.Task{}, fmt.Errorf("duplicate task: %w", err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	return s.GetTask(ctx, newID)
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return affectedOrNotFound(res, "task", id)
}
