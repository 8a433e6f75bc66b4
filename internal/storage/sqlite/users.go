package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tasknest/internal/models"
)

// UserPatch holds the fields of a partial user update.
type UserPatch struct {
	Name  *string
	Email *string
}

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	return u, err
}

// ListUsers returns every user in creation order.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, created_at FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT id, name, email, created_at FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserWithTasks fetches a user along with every task it owns, archived ones included.
func (s *Store) GetUserWithTasks(ctx context.Context, id int64) (models.UserWithTasks, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return models.UserWithTasks{}, err
	}
	tasks, err := s.ListTasks(ctx, TaskQuery{UserID: &id, Archived: IncludeArchived})
	if err != nil {
		return models.UserWithTasks{}, err
	}
	return models.UserWithTasks{User: u, Tasks: tasks}, nil
}

// CreateUser persists a user. Email format is checked at the API boundary; here only
// presence and uniqueness are enforced.
func (s *Store) CreateUser(ctx context.Context, name, email string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return models.User{}, models.Invalid("name", "must not be empty")
	}
	if email == "" {
		return models.User{}, models.Invalid("email", "must not be empty")
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO users(name, email) VALUES(?, ?)`, name, email)
	if isUniqueViolation(err) {
		return models.User{}, models.Invalid("email", "%s is already registered", email)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("user id: %w", err)
	}
	return s.GetUser(ctx, id)
}

// UpdateUser changes the name or email of a user.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch UserPatch) (models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if patch.Name != nil {
		u.Name = strings.TrimSpace(*patch.Name)
		if u.Name == "" {
			return models.User{}, models.Invalid("name", "must not be empty")
		}
	}
	if patch.Email != nil {
		u.Email = strings.TrimSpace(*patch.Email)
		if u.Email == "" {
			return models.User{}, models.Invalid("email", "must not be empty")
		}
	}

	_, err = s.db.ExecContext(ctx, `UPDATE users SET name = ?, email = ? WHERE id = ?`, u.Name, u.Email, id)
	if isUniqueViolation(err) {
		return models.User{}, models.Invalid("email", "%s is already registered", u.Email)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user; its tasks remain without an owner.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return affectedOrNotFound(res, "user", id)
}
