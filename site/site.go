package site

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"velastudio/analytics"
	"velastudio/email"
	"velastudio/models"
)

// SiteModule covers the site-wide endpoints: health, the contact form,
// admin stats and the sitemap.
type SiteModule struct {
	db        *gorm.DB
	mail      *email.EmailService
	analytics *analytics.AnalyticsModule
	domain    string
}

func NewSiteModule(db *gorm.DB, mail *email.EmailService, analyticsModule *analytics.AnalyticsModule, domain string) *SiteModule {
	return &SiteModule{
		db:        db,
		mail:      mail,
		analytics: analyticsModule,
		domain:    strings.TrimSuffix(domain, "/"),
	}
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine, api *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	api.GET("/healthcheck", s.healthcheck)
	api.POST("/submitContact", s.submitContact)
	api.GET("/getSiteStats", requireAuth, s.siteStats)
	router.GET("/sitemap.xml", s.sitemap)
}

func (s *SiteModule) healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// submitContact forwards the message by mail; nothing is persisted.
func (s *SiteModule) submitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.mail.SendContactMessage(req.Name, req.Email, req.Message); err != nil {
		log.Printf("Error sending contact message from %s: %v", req.Email, err)
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Could not send your message, please try again later",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Message sent",
	})
}

const (
	statsDays     = 15
	topPostsDays  = 30
	topPostsLimit = 10
)

func (s *SiteModule) siteStats(c *gin.Context) {
	if s.analytics == nil {
		c.JSON(http.StatusOK, gin.H{"analyticsEnabled": false})
		return
	}

	visitsByDay := s.analytics.GetVisitsByDay(statsDays)
	topPosts := s.analytics.GetTopPosts(topPostsDays, topPostsLimit)

	// Post titles live in the content database, not the analytics one.
	for i := range topPosts {
		var post models.BlogPost
		if err := s.db.First(&post, topPosts[i].PostID).Error; err == nil {
			topPosts[i].PostTitle = post.Title
		} else {
			topPosts[i].PostTitle = "(deleted post)"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"analyticsEnabled": true,
		"visitsByDay":      visitsByDay,
		"topPosts":         topPosts,
	})
}

// sitemap lists the fixed pages, active projects' anchor and every public
// blog post.
func (s *SiteModule) sitemap(c *gin.Context) {
	var sitemap strings.Builder
	sitemap.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sitemap.WriteString("\n")
	sitemap.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	sitemap.WriteString("\n")

	writeURL := func(loc, changefreq, priority, lastmod string) {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + loc + "</loc>\n")
		if lastmod != "" {
			sitemap.WriteString("    <lastmod>" + lastmod + "</lastmod>\n")
		}
		sitemap.WriteString("    <changefreq>" + changefreq + "</changefreq>\n")
		sitemap.WriteString("    <priority>" + priority + "</priority>\n")
		sitemap.WriteString("  </url>\n")
	}

	writeURL(s.domain+"/", "weekly", "1.0", "")
	writeURL(s.domain+"/about", "monthly", "0.8", "")
	writeURL(s.domain+"/projects", "weekly", "0.8", "")
	writeURL(s.domain+"/blog", "daily", "0.8", "")
	writeURL(s.domain+"/contact", "yearly", "0.5", "")

	// Projects have no pages of their own, only anchors on the projects
	// page. Inactive projects stay out.
	var activeProjects []models.Project
	s.db.Where("is_active = ?", true).
		Order("order_index ASC, id ASC").
		Find(&activeProjects)

	for _, project := range activeProjects {
		writeURL(
			s.domain+"/projects#project-"+strconv.Itoa(project.ID),
			"monthly",
			"0.6",
			project.UpdatedAt.Format(time.RFC3339),
		)
	}

	var posts []models.BlogPost
	s.db.Where("is_published = ? AND published_at IS NOT NULL", true).
		Order("published_at DESC").
		Find(&posts)

	for _, post := range posts {
		writeURL(
			s.domain+"/blog/"+post.Slug,
			"monthly",
			"0.6",
			post.UpdatedAt.Format(time.RFC3339),
		)
	}

	sitemap.WriteString("</urlset>\n")

	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(sitemap.String()))
}
