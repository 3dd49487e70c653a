package content

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"velastudio/cache"
	"velastudio/models"
)

// ContentModule manages the per-page hero content edited from the admin
// panel and rendered on the public home and about pages.
type ContentModule struct {
	db    *gorm.DB
	cache *cache.Store
}

func NewContentModule(db *gorm.DB, store *cache.Store) *ContentModule {
	return &ContentModule{db: db, cache: store}
}

func (m *ContentModule) RegisterRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	api.GET("/getPageContent", m.cache.Middleware(), m.getPageContent)
	api.POST("/updatePageContent", requireAuth, m.updatePageContent)
}

type pageTypeQuery struct {
	PageType string `form:"pageType" binding:"required,oneof=home about"`
}

func (m *ContentModule) getPageContent(c *gin.Context) {
	var q pageTypeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageType must be one of: home, about"})
		return
	}

	var row models.PageContent
	err := m.db.Where("page_type = ?", q.PageType).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		// Absent content is a null body, never generated fallback content.
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		log.Printf("Error loading page content for %s: %v", q.PageType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load page content"})
		return
	}

	c.JSON(http.StatusOK, row)
}

type updateContentRequest struct {
	PageType        string  `json:"pageType" binding:"required,oneof=home about"`
	HeroTitle       string  `json:"heroTitle" binding:"required"`
	HeroText        string  `json:"heroText" binding:"required"`
	HeroImageURL    *string `json:"heroImageUrl"`
	ContentSections string  `json:"contentSections" binding:"required"`
}

// updatePageContent upserts the single row for a page type. The write is a
// single ON CONFLICT statement on the page_type unique index, so concurrent
// calls cannot create a second row for the same type.
func (m *ContentModule) updatePageContent(c *gin.Context) {
	var req updateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row := models.PageContent{
		PageType:        req.PageType,
		HeroTitle:       req.HeroTitle,
		HeroText:        req.HeroText,
		HeroImageURL:    req.HeroImageURL,
		ContentSections: req.ContentSections,
	}

	err := m.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "page_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"hero_title":       req.HeroTitle,
			"hero_text":        req.HeroText,
			"hero_image_url":   req.HeroImageURL,
			"content_sections": req.ContentSections,
			"updated_at":       time.Now(),
		}),
	}).Create(&row).Error
	if err != nil {
		log.Printf("Error upserting page content for %s: %v", req.PageType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save page content"})
		return
	}

	// Re-read so the conflict path returns the surviving row with its
	// original id and created_at.
	var saved models.PageContent
	if err := m.db.Where("page_type = ?", req.PageType).First(&saved).Error; err != nil {
		log.Printf("Error reloading page content for %s: %v", req.PageType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save page content"})
		return
	}

	m.cache.Clear()
	c.JSON(http.StatusOK, saved)
}
