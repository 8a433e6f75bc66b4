package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasknest/internal/lifecycle"
	"tasknest/internal/models"
	"tasknest/internal/query"
	"tasknest/internal/storage/sqlite"
)

// DuplicateSuffix is appended to the title of copied boards and tasks.
const DuplicateSuffix = "(copy)"

type createBoardRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type updateBoardRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// handleListBoards returns every board with fresh statistics, optionally narrowed by
// ?status=.
func (s *Server) handleListBoards(c *gin.Context) {
	ctx := c.Request.Context()
	boards, err := s.store.ListBoards(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}

	if raw := c.Query("status"); raw != "" && raw != "all" {
		status, err := s.query.Labels().NormalizeBoardStatus(raw)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, models.Invalid("status", "unknown board status %q", raw))
			return
		}
		filtered := boards[:0:0]
		for _, b := range boards {
			if b.Status == status {
				filtered = append(filtered, b)
			}
		}
		boards = filtered
	}

	tasks, err := s.store.ListTasks(ctx, sqlite.TaskQuery{})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"boards": s.query.WithStats(boards, tasks)})
}

// handleAssignableBoards lists the boards a task may be created on.
func (s *Server) handleAssignableBoards(c *gin.Context) {
	boards, err := s.store.ListBoards(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"boards": lifecycle.AssignableBoards(boards)})
}

// handleGetBoard returns one board with its non-archived tasks and statistics.
func (s *Server) handleGetBoard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	board, err := s.store.GetBoard(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	tasks, err := s.store.ListTasks(ctx, sqlite.TaskQuery{BoardID: &id})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"board": models.BoardWithTasks{
		Board: board,
		Stats: s.query.Aggregate(board, tasks),
		Tasks: tasks,
	}})
}

// handleCreateBoard creates a new board. Boards always start active; a status in the
// body is ignored and later changes go through the lifecycle actions.
func (s *Server) handleCreateBoard(c *gin.Context) {
	var req createBoardRequest
	if !s.bindJSON(c, &req) {
		return
	}

	in := sqlite.BoardInput{Title: req.Title, Description: req.Description}
	board, err := s.store.CreateBoard(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"board": board})
}

// handleUpdateBoard edits a board. A status change must be one allowed transition.
func (s *Server) handleUpdateBoard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateBoardRequest
	if !s.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	board, err := s.store.GetBoard(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}

	var next models.BoardStatus
	if req.Status != nil {
		next, err = s.query.Labels().NormalizeBoardStatus(*req.Status)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, models.Invalid("status", "unknown board status %q", *req.Status))
			return
		}
		if _, err := lifecycle.ActionFor(board.Status, next); err != nil {
			s.fail(c, err)
			return
		}
	}

	if req.Title != nil || req.Description != nil {
		board, err = s.store.UpdateBoard(ctx, id, sqlite.BoardPatch{Title: req.Title, Description: req.Description})
		if err != nil {
			s.fail(c, err)
			return
		}
	}
	if next != "" && next != board.Status {
		board, err = s.store.SetBoardStatus(ctx, id, next)
		if err != nil {
			s.fail(c, err)
			return
		}
	}
	respondSuccess(c, http.StatusOK, gin.H{"board": board})
}

// handleBoardAction runs a lifecycle action or duplicates the board.
func (s *Server) handleBoardAction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	board, err := s.store.GetBoard(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}

	if c.Param("action") == "duplicate" {
		// The copy is a new board and starts active whatever the source status.
		dup, err := s.store.CreateBoard(ctx, sqlite.BoardInput{
			Title:       board.Title + " " + DuplicateSuffix,
			Description: board.Description,
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		respondSuccess(c, http.StatusCreated, gin.H{"board": dup})
		return
	}

	action, err := lifecycle.ParseAction(c.Param("action"))
	if err != nil {
		s.respondError(c, http.StatusNotFound, err)
		return
	}
	next, err := lifecycle.Apply(board.Status, action)
	if err != nil {
		s.fail(c, err)
		return
	}
	board, err = s.store.SetBoardStatus(ctx, id, next)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("board status changed", "board_id", id, "action", string(action), "status", string(next))
	respondSuccess(c, http.StatusOK, gin.H{"board": board})
}

// handleDeleteBoard removes a board. Its tasks stay and show the "no board" fallback.
func (s *Server) handleDeleteBoard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteBoard(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}

// handleListBoardTasks filters and sorts the tasks of one board.
func (s *Server) handleListBoardTasks(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := s.store.GetBoard(ctx, id); err != nil {
		s.fail(c, err)
		return
	}
	params := paramsFrom(c)
	params.BoardID = c.Param("id")
	s.listTasks(c, params)
}

func paramsFrom(c *gin.Context) query.Params {
	return query.Params{
		Status:   c.Query("status"),
		BoardID:  c.Query("boardId"),
		Priority: c.Query("priority"),
		Search:   c.Query("q"),
		Sort:     c.Query("sort"),
	}
}
