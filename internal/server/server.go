package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tasknest/internal/export"
	"tasknest/internal/labels"
	"tasknest/internal/lifecycle"
	"tasknest/internal/models"
	"tasknest/internal/query"
	"tasknest/internal/storage/sqlite"
)

// Options tune the HTTP server.
type Options struct {
	StaticDir   string
	Locale      string
	Labels      *labels.Normalizer
	CORSOrigins []string
}

// Server provides HTTP handlers for the task board backend.
type Server struct {
	engine    *gin.Engine
	store     *sqlite.Store
	logger    *slog.Logger
	staticDir string
	locale    string
	query     *query.Engine
	exporter  *export.Exporter
	origins   map[string]struct{}
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Locale == "" {
		opts.Locale = "ru"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/healthz", "/api/healthz"))

	engine := query.NewEngine(opts.Labels, opts.Locale)
	srv := &Server{
		engine:    router,
		store:     store,
		logger:    logger,
		staticDir: opts.StaticDir,
		locale:    opts.Locale,
		query:     engine,
		exporter:  export.New(engine, opts.Locale),
		origins:   map[string]struct{}{},
	}
	for _, o := range opts.CORSOrigins {
		srv.origins[o] = struct{}{}
	}
	router.Use(srv.cors())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together. The API is served both at
// the root and under /api.
func (s *Server) registerRoutes() {
	s.registerAPI(s.engine.Group(""))
	s.registerAPI(s.engine.Group("/api"))
	s.mountStatic()
}

func (s *Server) registerAPI(api *gin.RouterGroup) {
	api.GET("/healthz", s.handleHealth)
	api.GET("/labels", s.handleLabels)
	api.GET("/export", s.handleExport)

	boards := api.Group("/boards")
	{
		boards.GET("", s.handleListBoards)
		boards.POST("", s.handleCreateBoard)
		boards.GET("/assignable", s.handleAssignableBoards)
		boards.GET("/:id", s.handleGetBoard)
		boards.PUT("/:id", s.handleUpdateBoard)
		boards.DELETE("/:id", s.handleDeleteBoard)
		boards.GET("/:id/tasks", s.handleListBoardTasks)
		boards.POST("/:id/:action", s.handleBoardAction)
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("", s.handleListTasks)
		tasks.POST("", s.handleCreateTask)
		tasks.GET("/counts", s.handleTaskCounts)
		tasks.GET("/:id", s.handleGetTask)
		tasks.PUT("/:id", s.handleUpdateTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
		tasks.POST("/:id/archive", s.handleArchiveTask)
		tasks.POST("/:id/duplicate", s.handleDuplicateTask)
	}

	users := api.Group("/users")
	{
		users.GET("", s.handleListUsers)
		users.POST("", s.handleCreateUser)
		users.GET("/:id", s.handleGetUser)
		users.PUT("/:id", s.handleUpdateUser)
		users.DELETE("/:id", s.handleDeleteUser)
	}
}

// handleHealth reports readiness, including database reachability.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.respondError(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleLabels returns the display labels of every enumeration for a locale.
func (s *Server) handleLabels(c *gin.Context) {
	locale := s.requestLocale(c)
	n := s.query.Labels()

	statuses := gin.H{}
	for _, v := range models.TaskStatuses {
		statuses[string(v)] = n.StatusLabel(v, locale)
	}
	priorities := gin.H{}
	for _, v := range models.Priorities {
		priorities[string(v)] = n.PriorityLabel(v, locale)
	}
	boardStatuses := gin.H{}
	for _, v := range models.BoardStatuses {
		boardStatuses[string(v)] = n.BoardStatusLabel(v, locale)
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"locale":       locale,
		"locales":      n.Locales(),
		"task_status":  statuses,
		"priority":     priorities,
		"board_status": boardStatuses,
	})
}

// handleExport streams the CSV report of boards and non-archived tasks.
func (s *Server) handleExport(c *gin.Context) {
	ctx := c.Request.Context()
	boards, err := s.store.ListBoards(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	tasks, err := s.store.ListTasks(ctx, sqlite.TaskQuery{})
	if err != nil {
		s.fail(c, err)
		return
	}

	x := *s.exporter
	x.Locale = s.requestLocale(c)
	book := x.Build(boards, tasks)

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(x.Now())))
	if name := c.Query("sheet"); name != "" {
		sheet, ok := book.Sheet(name)
		if !ok {
			s.respondError(c, http.StatusBadRequest, models.Invalid("sheet", "unknown sheet %q", name))
			return
		}
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(sheet.CSV()+"\n"))
		return
	}

	var b strings.Builder
	if err := book.WriteCSV(&b); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(b.String()))
}

func (s *Server) requestLocale(c *gin.Context) string {
	if l := strings.TrimSpace(c.Query("locale")); l != "" {
		return l
	}
	return s.locale
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// statusFor maps domain errors onto HTTP status codes. Anything unclassified means the
// store could not serve the request.
func statusFor(err error) int {
	var verr *models.ValidationError
	var bindErrs validator.ValidationErrors
	switch {
	case errors.As(err, &verr), errors.As(err, &bindErrs):
		return http.StatusBadRequest
	case errors.Is(err, sqlite.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusServiceUnavailable
}

// fail responds with the status matching err.
func (s *Server) fail(c *gin.Context, err error) {
	s.respondError(c, statusFor(err), err)
}

// respondError logs the error and returns a JSON payload. Store failures are reported
// to the client without internal detail.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	attrs := []any{
		slog.String("path", c.FullPath()),
		slog.Int("status", status),
		slog.String("request_id", c.GetString(requestIDKey)),
		slog.String("error", err.Error()),
	}
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", attrs...)
		msg = "store unavailable, try again later"
	} else {
		s.logger.Warn("request rejected", attrs...)
	}
	c.JSON(status, gin.H{"error": msg})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

// bindJSON decodes the request body, turning binding failures into validation errors.
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, http.StatusBadRequest, describeBindError(err))
		return false
	}
	return true
}

func describeBindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.Invalid("", "invalid request body: %v", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return models.Invalid("", "%s", strings.Join(parts, "; "))
}
