package projects

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"velastudio/cache"
	"velastudio/models"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&models.Project{})
	return db
}

func allowAll(c *gin.Context) {
	c.Next()
}

func setupTestRouter(m *ProjectModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	m.RegisterRoutes(api, allowAll)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getPath(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestProject(db *gorm.DB, title string, orderIndex int, active bool) *models.Project {
	project := &models.Project{
		Title:      title,
		OrderIndex: orderIndex,
		IsActive:   active,
	}
	db.Create(project)
	return project
}

func TestGetProjects_ActiveOnlyOrdered(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	createTestProject(db, "third", 5, true)
	createTestProject(db, "hidden", 1, false)
	createTestProject(db, "first", 0, true)
	createTestProject(db, "second", 2, true)

	w := getPath(router, "/api/getProjects")
	assert.Equal(t, http.StatusOK, w.Code)

	var projects []models.Project
	json.Unmarshal(w.Body.Bytes(), &projects)

	assert.Equal(t, 3, len(projects))
	assert.Equal(t, "first", projects[0].Title)
	assert.Equal(t, "second", projects[1].Title)
	assert.Equal(t, "third", projects[2].Title)
}

func TestGetProjects_DuplicateOrderIndexTieBreak(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	a := createTestProject(db, "a", 1, true)
	b := createTestProject(db, "b", 1, true)

	w := getPath(router, "/api/getProjects")

	var projects []models.Project
	json.Unmarshal(w.Body.Bytes(), &projects)

	// Ties broken by insertion order.
	assert.Equal(t, a.ID, projects[0].ID)
	assert.Equal(t, b.ID, projects[1].ID)
}

func TestGetAllProjects_IncludesInactive(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	createTestProject(db, "live", 0, true)
	createTestProject(db, "hidden", 1, false)

	w := getPath(router, "/api/getAllProjects")

	var projects []models.Project
	json.Unmarshal(w.Body.Bytes(), &projects)
	assert.Equal(t, 2, len(projects))
}

func TestGetProjects_Empty(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	w := getPath(router, "/api/getProjects")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestCreateProject_Defaults(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	w := postJSON(router, "/api/createProject", `{"title":"New project"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var project models.Project
	json.Unmarshal(w.Body.Bytes(), &project)
	assert.NotZero(t, project.ID)
	assert.Equal(t, "New project", project.Title)
	assert.Equal(t, 0, project.OrderIndex)
	assert.True(t, project.IsActive)
	assert.Nil(t, project.Description)
	assert.NotZero(t, project.CreatedAt)
}

func TestCreateProject_Validation(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	w := postJSON(router, "/api/createProject", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/createProject", `{"title":"x","orderIndex":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProject_PartialFields(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	project := createTestProject(db, "old title", 3, true)

	w := postJSON(router, "/api/updateProject",
		fmt.Sprintf(`{"id":%d,"title":"new title"}`, project.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Project
	json.Unmarshal(w.Body.Bytes(), &updated)
	assert.Equal(t, "new title", updated.Title)
	// Unsupplied fields keep their values.
	assert.Equal(t, 3, updated.OrderIndex)
	assert.True(t, updated.IsActive)
}

func TestUpdateProject_NoFieldsStillTouchesUpdatedAt(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	project := createTestProject(db, "title", 1, true)

	var before models.Project
	db.First(&before, project.ID)

	time.Sleep(10 * time.Millisecond)

	w := postJSON(router, "/api/updateProject", fmt.Sprintf(`{"id":%d}`, project.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var after models.Project
	json.Unmarshal(w.Body.Bytes(), &after)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.OrderIndex, after.OrderIndex)
	assert.Equal(t, before.IsActive, after.IsActive)
}

func TestUpdateProject_Deactivate(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	project := createTestProject(db, "title", 0, true)

	w := postJSON(router, "/api/updateProject",
		fmt.Sprintf(`{"id":%d,"isActive":false}`, project.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Project
	json.Unmarshal(w.Body.Bytes(), &updated)
	assert.False(t, updated.IsActive)

	w = getPath(router, "/api/getProjects")
	var projects []models.Project
	json.Unmarshal(w.Body.Bytes(), &projects)
	assert.Equal(t, 0, len(projects))
}

func TestUpdateProject_NotFound(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	w := postJSON(router, "/api/updateProject", `{"id":999,"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestDeleteProject_Success(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	project := createTestProject(db, "doomed", 0, true)

	w := postJSON(router, "/api/deleteProject", fmt.Sprintf(`{"id":%d}`, project.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.True(t, resp.Success)

	var gone models.Project
	err := db.First(&gone, project.ID).Error
	assert.Error(t, err)
}

func TestDeleteProject_NotFoundIsResultNotError(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewProjectModule(db, nil))

	w := postJSON(router, "/api/deleteProject", `{"id":999}`)

	// Missing ids come back as a failed result, not an error status.
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "not found")
}

func TestProjectMutationsClearCachedListing(t *testing.T) {
	db := setupTestDB()
	store := cache.NewStore(t.TempDir(), time.Minute)
	router := setupTestRouter(NewProjectModule(db, store))

	createTestProject(db, "first", 0, true)

	w := getPath(router, "/api/getProjects")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	w = getPath(router, "/api/getProjects")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = postJSON(router, "/api/createProject", `{"title":"second","orderIndex":1}`)
	assert.Equal(t, http.StatusOK, w.Code)

	// The create dropped the cached listing, so the next read recomputes
	// and sees both projects.
	w = getPath(router, "/api/getProjects")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	var projects []models.Project
	json.Unmarshal(w.Body.Bytes(), &projects)
	assert.Equal(t, 2, len(projects))
}

func TestDeleteProjectClearsCachedListing(t *testing.T) {
	db := setupTestDB()
	store := cache.NewStore(t.TempDir(), time.Minute)
	router := setupTestRouter(NewProjectModule(db, store))

	project := createTestProject(db, "doomed", 0, true)

	getPath(router, "/api/getProjects")
	w := getPath(router, "/api/getProjects")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	postJSON(router, "/api/deleteProject", fmt.Sprintf(`{"id":%d}`, project.ID))

	w = getPath(router, "/api/getProjects")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	var projects []models.Project
	json.Unmarshal(w.Body.Bytes(), &projects)
	assert.Equal(t, 0, len(projects))
}
