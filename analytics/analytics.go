package analytics

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PageEvent is one recorded visit to a public page. Events live in their own
// database, separate from the content tables.
type PageEvent struct {
	ID        uint      `gorm:"primary_key;autoIncrement"`
	PostID    *int      `gorm:"index"` // nullable - set when the visit is to a specific blog post
	Path      string    `gorm:"not null"`
	CookieID  string    `gorm:"not null;index"`
	Event     string    `gorm:"not null;default:'visit'"`
	IP        string    `gorm:"not null"`
	Browser   *string
	Language  *string
	CreatedAt time.Time `gorm:"index"`
}

// AnalyticsModule records and aggregates visits. A nil module is valid and
// turns every method into a no-op.
type AnalyticsModule struct {
	db *gorm.DB
}

func NewAnalyticsModule(db *gorm.DB) *AnalyticsModule {
	if db == nil {
		log.Println("Analytics DB is nil, analytics will be disabled")
		return nil
	}

	if err := db.AutoMigrate(&PageEvent{}); err != nil {
		log.Printf("Error migrating page_events table: %v", err)
		return nil
	}

	log.Println("Analytics module initialized successfully")
	return &AnalyticsModule{db: db}
}

const (
	// visitThrottle suppresses repeat events from the same visitor on the
	// same page, so refreshes do not inflate counts.
	visitThrottle = 30 * time.Minute

	visitorCookie    = "velastudio_visitor_id"
	visitorCookieAge = 60 * 60 * 24 * 365 * 2 // 2 years
)

// TrackVisit records a visit asynchronously. postID is nil for generic page
// views.
func (a *AnalyticsModule) TrackVisit(c *gin.Context, postID *int) {
	if a == nil || a.db == nil {
		return
	}

	cookieID := a.getOrCreateCookieID(c)
	if a.recentlySeen(cookieID, postID) {
		return
	}

	event := PageEvent{
		PostID:    postID,
		Path:      c.Request.URL.Path,
		CookieID:  cookieID,
		Event:     "visit",
		IP:        a.getClientIP(c),
		Browser:   extractBrowser(c.Request.UserAgent()),
		Language:  extractLanguage(c),
		CreatedAt: time.Now(),
	}

	go func() {
		if err := a.db.Create(&event).Error; err != nil {
			log.Printf("Error saving analytics event: %v", err)
		}
	}()
}

// recentlySeen reports whether the visitor already produced an event for the
// same page inside the throttle window.
func (a *AnalyticsModule) recentlySeen(cookieID string, postID *int) bool {
	query := a.db.Model(&PageEvent{}).
		Where("cookie_id = ? AND created_at > ?", cookieID, time.Now().Add(-visitThrottle))
	if postID != nil {
		query = query.Where("post_id = ?", *postID)
	} else {
		query = query.Where("post_id IS NULL")
	}

	var count int64
	query.Count(&count)
	return count > 0
}

func (a *AnalyticsModule) getOrCreateCookieID(c *gin.Context) string {
	if cookie, err := c.Cookie(visitorCookie); err == nil && cookie != "" {
		return cookie
	}

	cookieID := uuid.NewString()
	c.SetCookie(visitorCookie, cookieID, visitorCookieAge, "/", "", false, true)
	return cookieID
}

// getClientIP resolves the real client IP, looking at proxy headers first.
func (a *AnalyticsModule) getClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// browserTokens maps a user-agent substring to a browser name. Checked in
// order, most specific agents first.
var browserTokens = []struct {
	token string
	name  string
}{
	{"edg", "Edge"},
	{"opr", "Opera"},
	{"opera", "Opera"},
	{"chrome", "Chrome"},
	{"firefox", "Firefox"},
	{"safari", "Safari"},
}

func extractBrowser(userAgent string) *string {
	if userAgent == "" {
		return nil
	}

	ua := strings.ToLower(userAgent)
	name := "Other"
	for _, b := range browserTokens {
		if strings.Contains(ua, b.token) {
			name = b.name
			break
		}
	}
	return &name
}

func extractLanguage(c *gin.Context) *string {
	acceptLang := c.GetHeader("Accept-Language")
	if acceptLang == "" {
		return nil
	}

	// "en-US,en;q=0.9,pt-BR;q=0.8" keeps only the preferred language
	preferred, _, _ := strings.Cut(acceptLang, ",")
	lang, _, _ := strings.Cut(strings.TrimSpace(preferred), ";")
	return &lang
}

// DayVisits is the visit count for one calendar day.
type DayVisits struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// PostVisits is the visit count for one blog post.
type PostVisits struct {
	PostID    int    `json:"post_id"`
	PostTitle string `json:"post_title" gorm:"-"`
	Count     int64  `json:"count"`
}

// GetPostVisitCount returns the all-time visit count for a post.
func (a *AnalyticsModule) GetPostVisitCount(postID int) int64 {
	if a == nil || a.db == nil {
		return 0
	}

	var count int64
	a.db.Model(&PageEvent{}).Where("post_id = ?", postID).Count(&count)
	return count
}

// GetVisitsByDay returns per-day visit counts for the last N days, zero-filled
// for days without traffic. The last entry is today.
func (a *AnalyticsModule) GetVisitsByDay(days int) []DayVisits {
	if a == nil || a.db == nil {
		return []DayVisits{}
	}

	since := time.Now().AddDate(0, 0, -days)

	var rows []DayVisits
	a.db.Model(&PageEvent{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Scan(&rows)

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Date] = row.Count
	}

	visits := make([]DayVisits, days)
	for i := range visits {
		date := time.Now().AddDate(0, 0, i+1-days).Format("2006-01-02")
		visits[i] = DayVisits{Date: date, Count: counts[date]}
	}
	return visits
}

// GetTopPosts returns the most visited posts of the last N days. Titles are
// filled in by the caller, which owns the content database.
func (a *AnalyticsModule) GetTopPosts(days int, limit int) []PostVisits {
	if a == nil || a.db == nil {
		return []PostVisits{}
	}

	var results []PostVisits
	a.db.Model(&PageEvent{}).
		Select("post_id as post_id, COUNT(*) as count").
		Where("post_id IS NOT NULL AND created_at >= ?", time.Now().AddDate(0, 0, -days)).
		Group("post_id").
		Order("count DESC").
		Limit(limit).
		Scan(&results)

	return results
}
