package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tasknest/internal/models"
)

const boardColumns = `id, title, description, status, created_at, updated_at`

// BoardInput carries the fields of a new board. Status is not settable: boards start
// active and move only through lifecycle actions.
type BoardInput struct {
	Title       string
	Description string
}

// BoardPatch holds the fields of a partial board update. Nil fields are left unchanged.
type BoardPatch struct {
	Title       *string
	Description *string
}

func scanBoard(row interface{ Scan(...any) error }) (models.Board, error) {
	var b models.Board
	var status string
	if err := row.Scan(&b.ID, &b.Title, &b.Description, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return models.Board{}, err
	}
	b.Status = models.BoardStatus(status)
	return b, nil
}

// ListBoards retrieves all boards ordered by creation.
func (s *Store) ListBoards(ctx context.Context) ([]models.Board, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+boardColumns+` FROM boards ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	boards := []models.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// GetBoard fetches a single board by id.
func (s *Store) GetBoard(ctx context.Context, id int64) (models.Board, error) {
	b, err := scanBoard(s.db.QueryRowContext(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Board{}, fmt.Errorf("board %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Board{}, fmt.Errorf("get board: %w", err)
	}
	return b, nil
}

// CreateBoard persists a new active board.
func (s *Store) CreateBoard(ctx context.Context, in BoardInput) (models.Board, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Board{}, models.Invalid("title", "must not be empty")
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO boards(title, description, status) VALUES(?, ?, ?)`,
		title, strings.TrimSpace(in.Description), string(models.BoardActive))
	if err != nil {
		return models.Board{}, fmt.Errorf("insert board: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Board{}, fmt.Errorf("board id: %w", err)
	}
	return s.GetBoard(ctx, id)
}

// UpdateBoard edits the title or description of a board.
func (s *Store) UpdateBoard(ctx context.Context, id int64, patch BoardPatch) (models.Board, error) {
	current, err := s.GetBoard(ctx, id)
	if err != nil {
		return models.Board{}, err
	}

	title := current.Title
	description := current.Description
	if patch.Title != nil {
		title = strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Board{}, models.Invalid("title", "must not be empty")
		}
	}
	if patch.Description != nil {
		description = strings.TrimSpace(*patch.Description)
	}

	_, err = s.db.ExecContext(ctx, `UPDATE boards SET title = ?, description = ? WHERE id = ?`, title, description, id)
	if err != nil {
		return models.Board{}, fmt.Errorf("update board: %w", err)
	}
	return s.GetBoard(ctx, id)
}

// SetBoardStatus stores a new lifecycle status. Transition rules are checked by callers.
func (s *Store) SetBoardStatus(ctx context.Context, id int64, status models.BoardStatus) (models.Board, error) {
	if !status.Valid() {
		return models.Board{}, models.Invalid("status", "unknown board status %q", status)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE boards SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return models.Board{}, fmt.Errorf("update board status: %w", err)
	}
	if err := affectedOrNotFound(res, "board", id); err != nil {
		return models.Board{}, err
	}
	return s.GetBoard(ctx, id)
}

// DeleteBoard removes a board. Its tasks are kept with their board reference cleared.
func (s *Store) DeleteBoard(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return affectedOrNotFound(res, "board", id)
}
