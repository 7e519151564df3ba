package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/mithrel/mudawwana/internal/site"
	"github.com/mithrel/mudawwana/pkg/api"
)

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

func (s *Server) handleHome(c *gin.Context) {
	view, err := s.site.Home(c.Request.Context(), langOf(c))
	if err != nil {
		s.htmlError(c, err)
		return
	}
	s.html(c, http.StatusOK, "home", "", view)
}

func (s *Server) handleArticles(c *gin.Context) {
	l := langOf(c)
	view, err := s.site.Articles(c.Request.Context(), l, api.ListQuery{Page: queryInt(c, "page")})
	if err != nil {
		s.htmlError(c, err)
		return
	}
	s.html(c, http.StatusOK, "list", site.LabelsFor(l).Get("all_articles"), view)
}

func (s *Server) handleArticle(c *gin.Context) {
	av, err := s.site.Article(c.Request.Context(), langOf(c), c.Param("slug"), s.readerID(c, false))
	if err != nil {
		s.htmlError(c, err)
		return
	}
	c.Header("ETag", av.ETag)
	c.Header("Cache-Control", "private, no-cache")
	// A pending flash belongs on this page, so the cached copy will not do.
	if match := c.GetHeader("If-None-Match"); match != "" && etagMatches(match, av.ETag) && !hasFlashes(c) {
		c.Status(http.StatusNotModified)
		return
	}
	s.renderPage(c, http.StatusOK, "article", pageData{
		Title:       av.Card.Title,
		Description: av.Card.Excerpt,
		Meta:        av.Meta,
		Data:        av,
	})
}

// etagMatches handles a comma separated If-None-Match list and "*".
func etagMatches(header, etag string) bool {
	for _, v := range strings.Split(header, ",") {
		v = strings.TrimPrefix(strings.TrimSpace(v), "W/")
		if v == "*" || v == etag {
			return true
		}
	}
	return false
}

func (s *Server) handleCategories(c *gin.Context) {
	ctx := c.Request.Context()
	l := langOf(c)
	cats, err := s.site.Categories(ctx, l)
	if err != nil {
		s.htmlError(c, err)
		return
	}
	tags, err := s.site.Tags(ctx, l)
	if err != nil {
		s.htmlError(c, err)
		return
	}
	s.html(c, http.StatusOK, "categories", site.LabelsFor(l).Get("categories"), gin.H{"Categories": cats, "Tags": tags})
}

func (s *Server) handleCategory(c *gin.Context) {
	view, err := s.site.CategoryArticles(c.Request.Context(), langOf(c), c.Param("slug"), queryInt(c, "page"))
	if err != nil {
		s.htmlError(c, err)
		return
	}
	s.html(c, http.StatusOK, "list", view.Category.Name, view)
}

func (s *Server) handleTag(c *gin.Context) {
	view, err := s.site.TagArticles(c.Request.Context(), langOf(c), c.Param("slug"), queryInt(c, "page"))
	if err != nil {
		s.htmlError(c, err)
		return
	}
	s.html(c, http.StatusOK, "list", "#"+view.Tag.Name, view)
}

func (s *Server) handleStatic(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := s.pages.Get(name, langOf(c))
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		s.html(c, http.StatusOK, "page", p.Title, p)
	}
}

// handleLang stores the chosen language and sends the reader back.
func (s *Server) handleLang(c *gin.Context) {
	l, ok := api.ParseLang(c.Param("lang"))
	if !ok {
		s.htmlError(c, errInvalidLang)
		return
	}
	sess := sessions.Default(c)
	sess.Set(sessLang, string(l))
	s.saveSession(c, sess)
	c.Redirect(http.StatusSeeOther, safeNext(c.Query("next"), "/"))
}

func (s *Server) handleNoRoute(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	s.htmlError(c, errPageNotFound)
}

func (s *Server) handleCommentForm(c *gin.Context) {
	slug := c.Param("slug")
	back := "/articles/" + slug + "#comments"
	var in site.CommentInput
	if err := c.ShouldBind(&in); err != nil {
		s.flash(c, "invalid_input")
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	if _, err := s.site.AddComment(c.Request.Context(), langOf(c), slug, s.readerID(c, true), in); err != nil {
		if statusOf(err) != http.StatusBadRequest {
			s.htmlError(c, err)
			return
		}
		s.flash(c, "invalid_input")
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	s.flash(c, "comment_added")
	c.Redirect(http.StatusSeeOther, back)
}

func (s *Server) handleReactForm(c *gin.Context) {
	slug := c.Param("slug")
	var in site.ReactInput
	if err := c.ShouldBind(&in); err != nil {
		s.htmlError(c, invalid(err))
		return
	}
	if _, err := s.site.React(c.Request.Context(), slug, s.readerID(c, true), in); err != nil {
		s.htmlError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/articles/"+slug)
}

func (s *Server) handleDeleteCommentForm(c *gin.Context) {
	if err := s.site.DeleteComment(c.Request.Context(), c.Param("id"), s.readerID(c, false)); err != nil {
		s.htmlError(c, err)
		return
	}
	s.flash(c, "comment_deleted")
	c.Redirect(http.StatusSeeOther, safeNext(c.PostForm("next"), "/"))
}

func (s *Server) handleNewsletterForm(c *gin.Context) {
	next := safeNext(c.PostForm("next"), "/")
	var in site.SubscribeInput
	if err := c.ShouldBind(&in); err != nil {
		s.flash(c, "invalid_input")
		c.Redirect(http.StatusSeeOther, next)
		return
	}
	res, err := s.site.Subscribe(c.Request.Context(), in)
	switch {
	case err != nil && statusOf(err) == http.StatusBadRequest:
		s.flash(c, "invalid_input")
	case err != nil:
		s.htmlError(c, err)
		return
	case res.AlreadySubscribed:
		s.flash(c, "already_subscribed")
	default:
		s.flash(c, "subscribed")
	}
	c.Redirect(http.StatusSeeOther, next)
}
