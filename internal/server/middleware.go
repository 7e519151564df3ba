package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mithrel/mudawwana/internal/db"
	"github.com/mithrel/mudawwana/pkg/api"
)

const (
	ctxLang      = "lang"
	ctxRequestID = "request_id"

	sessLang   = "lang"
	sessReader = "reader_id"

	headerRequestID = "X-Request-ID"
)

// requestLogger assigns a request id and logs one line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", id),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// language resolves the reader's language: ?lang, then the session, then
// Accept-Language, then the site default. An explicit ?lang is remembered.
func (s *Server) language() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		l, ok := api.ParseLang(c.Query("lang"))
		if ok {
			sess.Set(sessLang, string(l))
			s.saveSession(c, sess)
		} else if v, isStr := sess.Get(sessLang).(string); isStr {
			l, ok = api.ParseLang(v)
		}
		if !ok {
			l = api.MatchLang(c.GetHeader("Accept-Language"), s.opts.DefaultLang)
		}
		c.Set(ctxLang, l)
		c.Next()
	}
}

func langOf(c *gin.Context) api.Lang {
	if v, ok := c.Get(ctxLang); ok {
		if l, ok := v.(api.Lang); ok {
			return l
		}
	}
	return api.LangEN
}

// readerID returns the anonymous reader id kept in the session, creating one
// when create is set.
func (s *Server) readerID(c *gin.Context, create bool) string {
	sess := sessions.Default(c)
	if id, ok := sess.Get(sessReader).(string); ok && id != "" {
		return id
	}
	if !create {
		return ""
	}
	id := uuid.NewString()
	sess.Set(sessReader, id)
	s.saveSession(c, sess)
	return id
}

// flashKey is where gorilla sessions keep flash messages.
const flashKey = "_flash"

// hasFlashes reports whether a flash is waiting, without consuming it.
func hasFlashes(c *gin.Context) bool {
	flashes, _ := sessions.Default(c).Get(flashKey).([]any)
	return len(flashes) > 0
}

func (s *Server) saveSession(c *gin.Context, sess sessions.Session) {
	if err := sess.Save(); err != nil {
		s.log.Warn("session save", zap.Error(err), zap.String("request_id", c.GetString(ctxRequestID)))
	}
}

// statusOf maps storage and validation errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// safeNext keeps redirects on this site.
func safeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
