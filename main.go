package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"linkcut/auth"
	"linkcut/config"
	"linkcut/handlers"
	"linkcut/services"
	"linkcut/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := storage.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to storage: %v", err)
	}

	links := services.NewLinks(store, store, cfg.BaseURL)
	authn := auth.New(cfg.JWTSecret, cfg.TokenTTL)
	h := handlers.New(links, store, authn)

	router := gin.Default()

	router.POST("/api/register", h.Register)
	router.POST("/api/login", h.Login)
	router.POST("/api/shorten", authn.OptionalMiddleware(), h.Shorten)
	router.POST("/api/validate-password", h.ValidatePassword)
	router.GET("/:code", h.Redirect)

	api := router.Group("/api")
	api.Use(authn.Middleware())
	{
		api.GET("/user-links", h.UserLinks)
		api.DELETE("/delete/:shortCode", h.Delete)
	}

	log.Printf("Link shortener starting on %s", cfg.ServerAddress)
	if err := router.Run(cfg.ServerAddress); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
