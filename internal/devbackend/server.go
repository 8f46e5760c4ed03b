// Package devbackend is an in-memory stand-in for the auth, data and
// processing backends. It serves the same routes and error shapes so the
// client can be exercised locally and in tests.
package devbackend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"filedesk/internal/model"
	"filedesk/internal/util/logx"
)

// MaxUploadBytes mirrors the data backend's limit.
const MaxUploadBytes = 2 << 30

type Server struct {
	store *Store
	echo  *echo.Echo
}

type Options struct {
	// RequireSession rejects data and processing calls without a valid session.
	RequireSession bool
	// RequestLog enables echo's access log.
	RequestLog bool
}

func New(store *Store, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = detailErrorHandler
	if opts.RequestLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	s := &Server{store: store, echo: e}

	auth := e.Group("/api/auth")
	auth.POST("/register", s.handleRegister)
	auth.POST("/login", s.handleLogin)
	auth.GET("/check-session", s.handleCheckSession)
	auth.POST("/logout", s.handleLogout)

	data := e.Group("/api/data")
	proc := e.Group("/api/processing")
	if opts.RequireSession {
		data.Use(s.requireSession)
		proc.Use(s.requireSession)
	}
	data.GET("/files", s.handleList)
	data.POST("/upload", s.handleUpload, middleware.BodyLimit("2G"))
	data.GET("/download/:filename", s.handleDownload)
	data.DELETE("/files/:filename", s.handleDelete)
	proc.GET("/analyze/:filename", s.handleAnalyze)

	return s
}

func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Start(addr string) error { return s.echo.Start(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.echo.Shutdown(ctx) }

func (s *Server) Store() *Store { return s.store }

// detail renders errors the way the real backends do: {"detail": "..."}.
func detail(code int, msg string) *echo.HTTPError {
	return echo.NewHTTPError(code, msg)
}

func detailErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(code)
		}
	}
	if code >= 500 {
		logx.Errorf("devbackend: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	_ = c.JSON(code, map[string]string{"detail": msg})
}

func credentialFrom(c echo.Context) string {
	if tok := c.QueryParam("session_id"); tok != "" {
		return tok
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := s.store.Session(credentialFrom(c)); !ok {
			return detail(http.StatusUnauthorized, "Not authenticated")
		}
		return next(c)
	}
}

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r userRequest) validate() error {
	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return detail(http.StatusUnprocessableEntity, "username and password are required")
	}
	return nil
}

func filenameParam(c echo.Context) string {
	name := c.Param("filename")
	if u, err := url.PathUnescape(name); err == nil {
		return u
	}
	return name
}

func (s *Server) handleRegister(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return detail(http.StatusBadRequest, "invalid JSON body")
	}
	if err := req.validate(); err != nil {
		return err
	}
	if err := s.store.Register(req.Username, req.Password); err != nil {
		return detail(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User registered successfully", "username": req.Username})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return detail(http.StatusBadRequest, "invalid JSON body")
	}
	tok, err := s.store.Login(req.Username, req.Password)
	if err != nil {
		return detail(http.StatusUnauthorized, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":      "Login successful",
		"session_id":   tok,
		"access_token": tok,
		"token_type":   "bearer",
	})
}

func (s *Server) handleCheckSession(c echo.Context) error {
	id, ok := s.store.Session(credentialFrom(c))
	if !ok {
		return detail(http.StatusUnauthorized, "Session expired or invalid")
	}
	return c.JSON(http.StatusOK, map[string]int{"user_id": id})
}

func (s *Server) handleLogout(c echo.Context) error {
	tok := credentialFrom(c)
	if tok == "" {
		var body struct {
			SessionID string `json:"session_id"`
		}
		_ = c.Bind(&body)
		tok = body.SessionID
	}
	if tok == "" || !s.store.Logout(tok) {
		return detail(http.StatusBadRequest, "Invalid session")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleList(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.List())
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return detail(http.StatusUnprocessableEntity, "file is required")
	}
	if fh.Size > MaxUploadBytes {
		return detail(http.StatusRequestEntityTooLarge, "File too large")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	rec := model.FileRecord{
		Filename:    fh.Filename,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		FileType:    model.FileTypeFor(fh.Filename),
	}
	if rec.FileType == model.FileTypeCSV {
		if _, err := Analyze(rec.Filename, data, ""); err != nil {
			return detail(http.StatusBadRequest, err.Error())
		}
	}
	s.store.Put(rec, data)
	logx.Infof("devbackend: stored %s (%d bytes)", rec.Filename, len(data))
	return c.JSON(http.StatusOK, map[string]any{"message": "File uploaded", "path": "/files/" + rec.Filename, "filename": rec.Filename, "filetype": rec.FileType})
}

func (s *Server) handleDownload(c echo.Context) error {
	name := filenameParam(c)
	_, data, err := s.store.Get(name)
	if err != nil {
		return detail(http.StatusNotFound, err.Error())
	}
	ct := http.DetectContentType(data)
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		ct = "text/csv; charset=utf-8"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, ct, data)
}

func (s *Server) handleDelete(c echo.Context) error {
	name := filenameParam(c)
	if err := s.store.Delete(name); err != nil {
		return detail(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"detail": "File " + name + " deleted"})
}

func (s *Server) handleAnalyze(c echo.Context) error {
	name := filenameParam(c)
	rec, data, err := s.store.Get(name)
	if err != nil {
		return detail(http.StatusNotFound, err.Error())
	}
	if rec.FileType != model.FileTypeCSV {
		return detail(http.StatusBadRequest, "Only CSV files can be analyzed")
	}
	res, err := Analyze(name, data, c.QueryParam("columns"))
	if err != nil {
		return detail(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filename":         res.Filename,
		"preview":          res.Preview,
		"columns_total":    res.ColumnsTotal,
		"columns_selected": res.ColumnsSelected,
		"analysis":         res.PerColumn,
	})
}
