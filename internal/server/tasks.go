package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tasknest/internal/models"
	"tasknest/internal/query"
	"tasknest/internal/storage/sqlite"
)

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
	BoardID     *int64 `json:"boardId" binding:"required"`
	UserID      *int64 `json:"userId"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
	BoardID     *int64  `json:"boardId"`
	UserID      *int64  `json:"userId"`
	IsArchived  *bool   `json:"isArchived"`
}

// handleListTasks lists tasks with ?status=&boardId=&priority=&q=&sort=. With
// ?archived=true only archived tasks are returned.
func (s *Server) handleListTasks(c *gin.Context) {
	s.listTasks(c, paramsFrom(c))
}

func (s *Server) listTasks(c *gin.Context, params query.Params) {
	filter, err := s.query.ParseFilter(params)
	if err != nil {
		s.fail(c, err)
		return
	}

	archived := false
	if raw := c.Query("archived"); raw != "" {
		archived, err = strconv.ParseBool(raw)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, models.Invalid("archived", "must be a boolean"))
			return
		}
	}

	q := sqlite.TaskQuery{Status: filter.Status, BoardID: filter.BoardID}
	if archived {
		q.Archived = sqlite.OnlyArchived
	}
	tasks, err := s.store.ListTasks(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}

	if archived {
		tasks = s.query.Archived(tasks)
	} else {
		tasks = s.query.Filter(tasks, filter)
	}
	if params.Sort != "" {
		tasks = s.query.Sort(tasks, query.ParseSortKey(params.Sort))
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": tasks})
}

// handleTaskCounts returns the number of tasks behind each sidebar view.
func (s *Server) handleTaskCounts(c *gin.Context) {
	tasks, err := s.store.ListTasks(c.Request.Context(), sqlite.TaskQuery{})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"counts": s.query.Counts(tasks)})
}

// handleGetTask returns a task with its board and owner.
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := s.store.GetTaskDetail(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleCreateTask inserts a new task on an active board.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if !s.bindJSON(c, &req) {
		return
	}

	in := sqlite.TaskInput{
		BoardID:     *req.BoardID,
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
	}
	var err error
	if req.Status != "" {
		if in.Status, err = s.query.Labels().NormalizeStatus(req.Status); err != nil {
			s.respondError(c, http.StatusBadRequest, models.Invalid("status", "unknown status %q", req.Status))
			return
		}
	}
	if req.Priority != "" {
		if in.Priority, err = s.query.Labels().NormalizePriority(req.Priority); err != nil {
			s.respondError(c, http.StatusBadRequest, models.Invalid("priority", "unknown priority %q", req.Priority))
			return
		}
	}
	if strings.TrimSpace(req.DueDate) != "" {
		d, err := models.ParseDate(strings.TrimSpace(req.DueDate))
		if err != nil {
			s.respondError(c, http.StatusBadRequest, models.Invalid("dueDate", "%v", err))
			return
		}
		in.DueDate = &d
	}

	task, err := s.store.CreateTask(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

// handleUpdateTask updates task fields such as status or description. Drag-and-drop
// moves between columns arrive here as a status change.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if !s.bindJSON(c, &req) {
		return
	}

	patch := sqlite.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		BoardID:     req.BoardID,
		UserID:      req.UserID,
		IsArchived:  req.IsArchived,
	}
	if req.Status != nil {
		status, err := s.query.Labels().NormalizeStatus(*req.Status)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, models.Invalid("status", "unknown status %q", *req.Status))
			return
		}
		patch.Status = &status
	}
	if req.Priority != nil {
		priority, err := s.query.Labels().NormalizePriority(*req.Priority)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, models.Invalid("priority", "unknown priority %q", *req.Priority))
			return
		}
		patch.Priority = &priority
	}
	if req.DueDate != nil {
		if raw := strings.TrimSpace(*req.DueDate); raw == "" {
			patch.ClearDueDate = true
		} else {
			d, err := models.ParseDate(raw)
			if err != nil {
				s.respondError(c, http.StatusBadRequest, models.Invalid("dueDate", "%v", err))
				return
			}
			patch.DueDate = &d
		}
	}

	task, err := s.store.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleArchiveTask soft-deletes a task.
func (s *Server) handleArchiveTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := s.store.ArchiveTask(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleDuplicateTask copies a task next to the original.
func (s *Server) handleDuplicateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := s.store.DuplicateTask(c.Request.Context(), id, DuplicateSuffix)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
