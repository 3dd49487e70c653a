package projects

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"velastudio/cache"
	"velastudio/models"
)

type ProjectModule struct {
	db    *gorm.DB
	cache *cache.Store
}

func NewProjectModule(db *gorm.DB, store *cache.Store) *ProjectModule {
	return &ProjectModule{db: db, cache: store}
}

func (m *ProjectModule) RegisterRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	api.GET("/getProjects", m.cache.Middleware(), m.getProjects)
	api.GET("/getAllProjects", requireAuth, m.getAllProjects)
	api.POST("/createProject", requireAuth, m.createProject)
	api.POST("/updateProject", requireAuth, m.updateProject)
	api.POST("/deleteProject", requireAuth, m.deleteProject)
}

// projectOrder sorts by the editor-controlled index, insertion order breaking
// ties.
const projectOrder = "order_index ASC, id ASC"

func (m *ProjectModule) getProjects(c *gin.Context) {
	var projects []models.Project
	if err := m.db.Where("is_active = ?", true).Order(projectOrder).Find(&projects).Error; err != nil {
		log.Printf("Error loading projects: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load projects"})
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

func (m *ProjectModule) getAllProjects(c *gin.Context) {
	var projects []models.Project
	if err := m.db.Order(projectOrder).Find(&projects).Error; err != nil {
		log.Printf("Error loading projects: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load projects"})
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

type createProjectRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	OrderIndex  int     `json:"orderIndex" binding:"gte=0"`
	IsActive    *bool   `json:"isActive"`
}

func (m *ProjectModule) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	project := models.Project{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		OrderIndex:  req.OrderIndex,
		IsActive:    isActive,
	}

	if err := m.db.Create(&project).Error; err != nil {
		log.Printf("Error creating project: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create project"})
		return
	}

	m.cache.Clear()
	c.JSON(http.StatusOK, project)
}

type updateProjectRequest struct {
	ID          int     `json:"id" binding:"required"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	OrderIndex  *int    `json:"orderIndex" binding:"omitempty,gte=0"`
	IsActive    *bool   `json:"isActive"`
}

// updateProject applies only the supplied fields. updated_at is written on
// every call, changed fields or not.
func (m *ProjectModule) updateProject(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := m.db.First(&project, req.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		log.Printf("Error loading project %d: %v", req.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update project"})
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.OrderIndex != nil {
		updates["order_index"] = *req.OrderIndex
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := m.db.Model(&project).Updates(updates).Error; err != nil {
		log.Printf("Error updating project %d: %v", req.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update project"})
		return
	}

	var saved models.Project
	if err := m.db.First(&saved, req.ID).Error; err != nil {
		log.Printf("Error reloading project %d: %v", req.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update project"})
		return
	}

	m.cache.Clear()
	c.JSON(http.StatusOK, saved)
}

type deleteRequest struct {
	ID int `json:"id" binding:"required"`
}

// deleteProject reports a missing id as {success:false} rather than an
// error status, unlike updateProject.
func (m *ProjectModule) deleteProject(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := m.db.Delete(&models.Project{}, req.ID)
	if result.Error != nil {
		log.Printf("Error deleting project %d: %v", req.ID, result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete project"})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Project not found",
		})
		return
	}

	m.cache.Clear()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project deleted",
	})
}
