package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/api/middleware"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/blog"
)

func (h *handler) GetBlogPost(c *gin.Context) {
	post, err := h.blog.Get(c.Request.Context(), middleware.SessionSecret(c), c.Param("slug"))
	if err != nil {
		switch {
		case errors.Is(err, blog.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Blog post not found."})
		case errors.Is(err, blog.ErrDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch blog post"})
		}
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *handler) CreateBlogPost(c *gin.Context) {
	var draft blog.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)
	post, err := h.blog.Create(c.Request.Context(), middleware.SessionSecret(c), user, draft)
	if err != nil {
		switch {
		case errors.Is(err, blog.ErrNotAuthor):
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to post blogs."})
		case errors.Is(err, blog.ErrMissingField):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, blog.ErrDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create blog post."})
		}
		return
	}
	c.JSON(http.StatusCreated, post)
}
