package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mithrel/mudawwana/internal/db"
	"github.com/mithrel/mudawwana/internal/site"
	"github.com/mithrel/mudawwana/internal/util"
	"github.com/mithrel/mudawwana/pkg/api"
)

const (
	apiRecentLimit   = 5
	apiFeaturedLimit = 3
)

var (
	errPageNotFound = fmt.Errorf("page: %w", db.ErrNotFound)
	errInvalidLang  = fmt.Errorf("%w: unsupported language", db.ErrInvalid)
)

func invalid(err error) error { return fmt.Errorf("%w: %v", db.ErrInvalid, err) }

// apiError writes err as JSON. Internal errors are logged, not exposed.
func (s *Server) apiError(c *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) apiPosts(c *gin.Context) {
	since, until, err := util.ParseTimeRange(c.Query("since"), c.Query("until"))
	if err != nil {
		s.apiError(c, invalid(err))
		return
	}
	page, err := s.site.Posts(c.Request.Context(), api.ListQuery{
		Page:         queryInt(c, "page"),
		PerPage:      queryInt(c, "per_page"),
		CategorySlug: c.Query("category"),
		TagSlug:      c.Query("tag"),
		Since:        since,
		Until:        until,
	})
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) apiRecent(c *gin.Context) {
	limit := queryInt(c, "limit")
	if limit <= 0 {
		limit = apiRecentLimit
	}
	posts, err := s.site.RecentPosts(c.Request.Context(), limit)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": posts})
}

func (s *Server) apiFeatured(c *gin.Context) {
	limit := queryInt(c, "limit")
	if limit <= 0 {
		limit = apiFeaturedLimit
	}
	posts, err := s.site.FeaturedPosts(c.Request.Context(), limit)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": posts})
}

func (s *Server) apiPost(c *gin.Context) {
	av, err := s.site.Article(c.Request.Context(), langOf(c), c.Param("slug"), s.readerID(c, false))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.Header("ETag", av.ETag)
	if match := c.GetHeader("If-None-Match"); match != "" && etagMatches(match, av.ETag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, av)
}

func (s *Server) apiSearch(c *gin.Context) {
	posts, err := s.site.Search(c.Request.Context(), c.Query("q"), queryInt(c, "limit"))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": posts})
}

func (s *Server) apiCategories(c *gin.Context) {
	cats, err := s.site.AllCategories(c.Request.Context())
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cats})
}

func (s *Server) apiCategory(c *gin.Context) {
	ctx := c.Request.Context()
	cat, err := s.site.Category(ctx, c.Param("slug"))
	if err != nil {
		s.apiError(c, err)
		return
	}
	page, err := s.site.Posts(ctx, api.ListQuery{Page: queryInt(c, "page"), PerPage: queryInt(c, "per_page"), CategorySlug: cat.Slug})
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat, "posts": page})
}

func (s *Server) apiTags(c *gin.Context) {
	tags, err := s.site.AllTags(c.Request.Context())
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tags})
}

func (s *Server) apiTag(c *gin.Context) {
	ctx := c.Request.Context()
	tag, err := s.site.Tag(ctx, c.Param("slug"))
	if err != nil {
		s.apiError(c, err)
		return
	}
	page, err := s.site.Posts(ctx, api.ListQuery{Page: queryInt(c, "page"), PerPage: queryInt(c, "per_page"), TagSlug: tag.Slug})
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag, "posts": page})
}

func (s *Server) apiComments(c *gin.Context) {
	list, err := s.site.Comments(c.Request.Context(), langOf(c), c.Param("slug"), s.readerID(c, false))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (s *Server) apiAddComment(c *gin.Context) {
	var in site.CommentInput
	if err := c.ShouldBind(&in); err != nil {
		s.apiError(c, invalid(err))
		return
	}
	cv, err := s.site.AddComment(c.Request.Context(), langOf(c), c.Param("slug"), s.readerID(c, true), in)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cv)
}

func (s *Server) apiDeleteComment(c *gin.Context) {
	if err := s.site.DeleteComment(c.Request.Context(), c.Param("id"), s.readerID(c, false)); err != nil {
		s.apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) apiReactions(c *gin.Context) {
	st, err := s.site.Reactions(c.Request.Context(), c.Param("slug"), s.readerID(c, false))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) apiReact(c *gin.Context) {
	var in site.ReactInput
	if err := c.ShouldBind(&in); err != nil {
		s.apiError(c, invalid(err))
		return
	}
	st, err := s.site.React(c.Request.Context(), c.Param("slug"), s.readerID(c, true), in)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) apiUnreact(c *gin.Context) {
	st, err := s.site.Unreact(c.Request.Context(), c.Param("slug"), s.readerID(c, false))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) apiSubscribe(c *gin.Context) {
	var in site.SubscribeInput
	if err := c.ShouldBind(&in); err != nil {
		s.apiError(c, invalid(err))
		return
	}
	res, err := s.site.Subscribe(c.Request.Context(), in)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) apiUnsubscribe(c *gin.Context) {
	var in site.SubscribeInput
	if err := c.ShouldBind(&in); err != nil {
		s.apiError(c, invalid(err))
		return
	}
	res, err := s.site.Unsubscribe(c.Request.Context(), in)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
