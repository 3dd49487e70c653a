package database

import (
	"log"

	"gorm.io/gorm"

	"velastudio/auth"
	"velastudio/models"
)

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.AdminUser{},
		&models.PageContent{},
		&models.Project{},
		&models.BlogPost{},
	)

	if err != nil {
		log.Printf("Error running migrations: %v", err)
		return err
	}

	log.Println("Migrations completed successfully")
	return nil
}

// SeedAdminUser creates the admin account from configuration. This is the
// only way admin accounts come into existence; the API never creates them.
// Existing accounts are left untouched.
func SeedAdminUser(db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		log.Println("admin credentials not configured, skipping admin seed")
		return nil
	}

	var existing models.AdminUser
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user := models.AdminUser{
		Username:     username,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("Error seeding admin user: %v", err)
		return err
	}

	log.Printf("Seeded admin user %q", username)
	return nil
}

// SeedDemoContent inserts placeholder hero content for the home and about
// pages when they are missing. Demo data only; the content endpoints never
// fall back to it.
func SeedDemoContent(db *gorm.DB) error {
	demo := []models.PageContent{
		{
			PageType:        models.PageTypeHome,
			HeroTitle:       "Welcome to Vela Studio",
			HeroText:        "We design and build digital products.",
			ContentSections: `[]`,
		},
		{
			PageType:        models.PageTypeAbout,
			HeroTitle:       "About us",
			HeroText:        "A small studio with a big appetite for craft.",
			ContentSections: `[]`,
		},
	}

	for _, row := range demo {
		var existing models.PageContent
		if err := db.Where("page_type = ?", row.PageType).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&row).Error; err != nil {
			log.Printf("Error seeding demo content for %s: %v", row.PageType, err)
			return err
		}
	}

	log.Println("Seeded demo page content")
	return nil
}
