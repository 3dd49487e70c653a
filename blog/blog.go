package blog

import (
	"bytes"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"

	"velastudio/analytics"
	"velastudio/cache"
	"velastudio/common"
	"velastudio/models"
)

type BlogModule struct {
	db        *gorm.DB
	cache     *cache.Store
	analytics *analytics.AnalyticsModule
}

// markdown renderer configured with Goldmark and useful extensions
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(), // raw HTML passes through, sanitized below
	),
)

// sanitizer strips anything outside the usual user-generated-content tags
// from the rendered post body.
var sanitizer = bluemonday.UGCPolicy()

func NewBlogModule(db *gorm.DB, store *cache.Store, analyticsModule *analytics.AnalyticsModule) *BlogModule {
	return &BlogModule{db: db, cache: store, analytics: analyticsModule}
}

func (b *BlogModule) RegisterRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	api.GET("/getBlogPosts", b.cache.Middleware(), b.getBlogPosts)
	api.GET("/getBlogPostBySlug", b.getBlogPostBySlug)
	api.GET("/getAllBlogPosts", requireAuth, b.getAllBlogPosts)
	api.POST("/createBlogPost", requireAuth, b.createBlogPost)
	api.POST("/updateBlogPost", requireAuth, b.updateBlogPost)
	api.POST("/deleteBlogPost", requireAuth, b.deleteBlogPost)
}

// publicFilter selects posts visible on the public site: the published flag
// alone is not enough, published_at must also be set.
const publicFilter = "is_published = ? AND published_at IS NOT NULL"

type paginatedPosts struct {
	Data       []models.BlogPost `json:"data"`
	Pagination common.Pagination `json:"pagination"`
}

func (b *BlogModule) getBlogPosts(c *gin.Context) {
	var q common.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and limit must be integers"})
		return
	}
	q.Clamp()

	var total int64
	if err := b.db.Model(&models.BlogPost{}).Where(publicFilter, true).Count(&total).Error; err != nil {
		log.Printf("Error counting blog posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load blog posts"})
		return
	}

	var posts []models.BlogPost
	err := b.db.Where(publicFilter, true).
		Order("published_at DESC, id DESC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&posts).Error
	if err != nil {
		log.Printf("Error loading blog posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load blog posts"})
		return
	}
	if posts == nil {
		posts = []models.BlogPost{}
	}

	c.JSON(http.StatusOK, paginatedPosts{
		Data:       posts,
		Pagination: common.NewPagination(q.Page, q.Limit, total),
	})
}

func (b *BlogModule) getAllBlogPosts(c *gin.Context) {
	var q common.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and limit must be integers"})
		return
	}
	q.Clamp()

	var total int64
	if err := b.db.Model(&models.BlogPost{}).Count(&total).Error; err != nil {
		log.Printf("Error counting blog posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load blog posts"})
		return
	}

	var posts []models.BlogPost
	err := b.db.Order("created_at DESC, id DESC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&posts).Error
	if err != nil {
		log.Printf("Error loading blog posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load blog posts"})
		return
	}
	if posts == nil {
		posts = []models.BlogPost{}
	}

	c.JSON(http.StatusOK, paginatedPosts{
		Data:       posts,
		Pagination: common.NewPagination(q.Page, q.Limit, total),
	})
}

type slugQuery struct {
	Slug string `form:"slug" binding:"required"`
}

// postDetail is the public detail payload: the stored post plus its body
// rendered to sanitized HTML.
type postDetail struct {
	models.BlogPost
	ContentHTML string `json:"content_html"`
}

func (b *BlogModule) getBlogPostBySlug(c *gin.Context) {
	var q slugQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is required"})
		return
	}

	var post models.BlogPost
	err := b.db.Where("slug = ?", q.Slug).Where(publicFilter, true).First(&post).Error
	if err == gorm.ErrRecordNotFound {
		// Non-existent and non-public slugs are indistinguishable here.
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		log.Printf("Error loading blog post %q: %v", q.Slug, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load blog post"})
		return
	}

	b.analytics.TrackVisit(c, &post.ID)

	c.JSON(http.StatusOK, postDetail{
		BlogPost:    post,
		ContentHTML: renderMarkdown(post.Content),
	})
}

type createPostRequest struct {
	Title       string     `json:"title" binding:"required"`
	Slug        string     `json:"slug" binding:"required"`
	Excerpt     *string    `json:"excerpt"`
	Content     string     `json:"content" binding:"required"`
	ImageURL    *string    `json:"imageUrl"`
	IsPublished *bool      `json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func (b *BlogModule) createBlogPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isPublished := false
	if req.IsPublished != nil {
		isPublished = *req.IsPublished
	}

	post := models.BlogPost{
		Title:       req.Title,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		IsPublished: isPublished,
		PublishedAt: req.PublishedAt,
	}

	if err := b.db.Create(&post).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
			return
		}
		log.Printf("Error creating blog post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create blog post"})
		return
	}

	b.cache.Clear()
	c.JSON(http.StatusOK, post)
}

type updatePostRequest struct {
	ID          int        `json:"id" binding:"required"`
	Title       *string    `json:"title"`
	Slug        *string    `json:"slug"`
	Excerpt     *string    `json:"excerpt"`
	Content     *string    `json:"content"`
	ImageURL    *string    `json:"imageUrl"`
	IsPublished *bool      `json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// updateBlogPost applies only the supplied fields. The slug-conflict check
// and the write run inside one transaction, with the unique index as the
// backstop for writes racing past the check.
func (b *BlogModule) updateBlogPost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var saved models.BlogPost
	txErr := b.db.Transaction(func(tx *gorm.DB) error {
		var post models.BlogPost
		if err := tx.First(&post, req.ID).Error; err != nil {
			return err
		}

		if req.Slug != nil && *req.Slug != post.Slug {
			var count int64
			if err := tx.Model(&models.BlogPost{}).
				Where("slug = ? AND id != ?", *req.Slug, post.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return gorm.ErrDuplicatedKey
			}
		}

		updates := map[string]interface{}{
			"updated_at": time.Now(),
		}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Slug != nil {
			updates["slug"] = *req.Slug
		}
		if req.Excerpt != nil {
			updates["excerpt"] = *req.Excerpt
		}
		if req.Content != nil {
			updates["content"] = *req.Content
		}
		if req.ImageURL != nil {
			updates["image_url"] = *req.ImageURL
		}
		if req.IsPublished != nil {
			updates["is_published"] = *req.IsPublished
		}
		if req.PublishedAt != nil {
			updates["published_at"] = *req.PublishedAt
		}

		if err := tx.Model(&post).Updates(updates).Error; err != nil {
			return err
		}

		return tx.First(&saved, req.ID).Error
	})

	switch {
	case txErr == gorm.ErrRecordNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "blog post not found"})
		return
	case txErr == gorm.ErrDuplicatedKey || isUniqueViolation(txErr):
		c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
		return
	case txErr != nil:
		log.Printf("Error updating blog post %d: %v", req.ID, txErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update blog post"})
		return
	}

	b.cache.Clear()
	c.JSON(http.StatusOK, saved)
}

type deleteRequest struct {
	ID int `json:"id" binding:"required"`
}

// deleteBlogPost mirrors deleteProject: a missing id is a {success:false}
// result, not an error status.
func (b *BlogModule) deleteBlogPost(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := b.db.Delete(&models.BlogPost{}, req.ID)
	if result.Error != nil {
		log.Printf("Error deleting blog post %d: %v", req.ID, result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete blog post"})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Blog post not found",
		})
		return
	}

	b.cache.Clear()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Blog post deleted",
	})
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// On render failure fall back to the raw body rather than breaking
		// the response.
		return sanitizer.Sanitize(content)
	}
	return sanitizer.Sanitize(buf.String())
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
