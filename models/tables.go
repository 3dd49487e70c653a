package models

import "time"

// Page types with managed hero content. At most one PageContent row per type.
const (
	PageTypeHome  = "home"
	PageTypeAbout = "about"
)

type AdminUser struct {
	ID           int       `gorm:"primary_key;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"` // json:"-" prevents the hash from being exposed in API
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PageContent struct {
	ID              int       `gorm:"primary_key;autoIncrement" json:"id"`
	PageType        string    `gorm:"uniqueIndex;not null" json:"page_type"` // unique key used by the upsert
	HeroTitle       string    `gorm:"not null" json:"hero_title"`
	HeroText        string    `gorm:"type:text;not null" json:"hero_text"`
	HeroImageURL    *string   `json:"hero_image_url"`
	ContentSections string    `gorm:"type:text;not null" json:"content_sections"` // opaque serialized document, passed through uninterpreted
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Project struct {
	ID          int       `gorm:"primary_key;autoIncrement" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	ImageURL    *string   `json:"image_url"`
	OrderIndex  int       `gorm:"not null;default:0;index" json:"order_index"` // sort key, duplicates and gaps allowed
	IsActive    bool      `gorm:"not null;index" json:"is_active"` // no db default: gorm drops zero values for defaulted fields on insert
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BlogPost struct {
	ID          int        `gorm:"primary_key;autoIncrement" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt     *string    `gorm:"type:text" json:"excerpt"`
	Content     string     `gorm:"type:text;not null" json:"content"` // markdown
	ImageURL    *string    `json:"image_url"`
	IsPublished bool       `gorm:"not null;default:false;index" json:"is_published"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPublic reports whether a post is visible on the public site. The two
// fields are independent: is_published can be true while published_at is
// still null, and such a post is not public.
func (p BlogPost) IsPublic() bool {
	return p.IsPublished && p.PublishedAt != nil
}
