package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"velastudio/analytics"
	"velastudio/auth"
	"velastudio/blog"
	"velastudio/cache"
	"velastudio/common"
	"velastudio/config"
	"velastudio/content"
	"velastudio/database"
	"velastudio/email"
	"velastudio/projects"
	"velastudio/site"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db := common.ConnectDb(cfg.DBFile)
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	if err := database.SeedAdminUser(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal("Failed to seed admin user: ", err)
	}

	if cfg.SeedDemoContent && cfg.IsDevelopment() {
		if err := database.SeedDemoContent(db); err != nil {
			log.Fatal("Failed to seed demo content: ", err)
		}
	}

	analyticsModule := analytics.NewAnalyticsModule(common.ConnectAnalyticsDb(cfg.AnalyticsDBFile))

	store := cache.NewStore(cfg.CacheDir, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	if store != nil {
		// Periodic sweep of expired cache files; reads already ignore them.
		go func() {
			for range time.Tick(time.Hour) {
				if err := store.ClearExpired(); err != nil {
					log.Printf("Error clearing expired cache files: %v", err)
				}
			}
		}()
	}

	mail := email.NewEmailService(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPassword,
		cfg.SMTPFrom,
		cfg.ContactRecipient,
	)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api := router.Group("/api")

	authModule := auth.NewAuthModule(db)
	authModule.RegisterRoutes(api)
	requireAuth := authModule.RequireAuth

	content.NewContentModule(db, store).RegisterRoutes(api, requireAuth)
	projects.NewProjectModule(db, store).RegisterRoutes(api, requireAuth)
	blog.NewBlogModule(db, store, analyticsModule).RegisterRoutes(api, requireAuth)
	site.NewSiteModule(db, mail, analyticsModule, cfg.Domain).RegisterRoutes(router, api, requireAuth)

	log.Printf("Starting server on port %s...", cfg.Port)
	if err := router.Run(cfg.Addr()); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
