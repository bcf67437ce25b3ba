package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkcut/auth"
	"linkcut/qr"
	"linkcut/services"
)

type ShortenRequest struct {
	LongURL       string `json:"longUrl" binding:"required"`
	ShortCode     string `json:"shortCode"`
	Password      string `json:"password"`
	ExpireInHours *int   `json:"expireInHours"`
}

type ValidatePasswordRequest struct {
	ShortCode string `json:"shortCode" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// Shorten creates a short link. Anonymous requests work; authenticated
// ones attach the link to the caller's account.
func (h *Handler) Shorten(c *gin.Context) {
	var req ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.links.Create(c.Request.Context(), services.CreateLink{
		LongURL:       req.LongURL,
		CustomCode:    req.ShortCode,
		Password:      req.Password,
		ExpireInHours: req.ExpireInHours,
		OwnerID:       currentUserID(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrCodeConflict):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Failed to create link: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	link := result.Link
	body := gin.H{
		"shortUrl":          link.ShortURL,
		"shortCode":         link.ShortCode,
		"createdAt":         link.CreatedAt,
		"passwordProtected": link.PasswordHash != nil,
	}
	if link.ExpiresAt != nil {
		body["expiresAt"] = link.ExpiresAt
	}
	if result.Warning != "" {
		body["warning"] = result.Warning
	}

	// QR rendering is cosmetic; a failure degrades the response
	// rather than failing the create.
	if dataURL, err := qr.DataURL(link.ShortURL); err == nil {
		body["qrCode"] = dataURL
	} else {
		log.Printf("Failed to render QR code for %q: %v", link.ShortCode, err)
	}

	c.JSON(http.StatusCreated, body)
}

// Redirect resolves a short code and sends the visitor to the
// destination. Password-protected links are not redirected here; the
// caller must go through ValidatePassword first.
func (h *Handler) Redirect(c *gin.Context) {
	code := c.Param("code")

	link, err := h.links.Resolve(c.Request.Context(), code, "")
	if err != nil {
		h.renderResolveError(c, err)
		return
	}

	referrer := c.Request.Referer()
	userAgent := c.Request.UserAgent()
	ipAddress := c.ClientIP()

	go func() {
		if err := h.links.RecordClick(context.Background(), link, referrer, userAgent, ipAddress); err != nil {
			log.Printf("Failed to record click: %v", err)
		}
	}()

	c.Redirect(http.StatusFound, link.LongURL)
}

// ValidatePassword checks the password for a protected link and returns
// the destination so the client can follow it.
func (h *Handler) ValidatePassword(c *gin.Context) {
	var req ValidatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.links.Resolve(c.Request.Context(), req.ShortCode, req.Password)
	if err != nil {
		h.renderResolveError(c, err)
		return
	}

	// Read from the request before spawning the goroutine: gin recycles
	// the context once the handler returns.
	referrer := c.Request.Referer()
	userAgent := c.Request.UserAgent()
	ipAddress := c.ClientIP()

	go func() {
		if err := h.links.RecordClick(context.Background(), link, referrer, userAgent, ipAddress); err != nil {
			log.Printf("Failed to record click: %v", err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"longUrl": link.LongURL})
}

// UserLinks lists the authenticated user's links.
func (h *Handler) UserLinks(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	links, err := h.links.ListForOwner(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Failed to list links for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"links": links,
		"total": len(links),
	})
}

// Delete removes one of the authenticated user's links.
func (h *Handler) Delete(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	code := c.Param("shortCode")

	link, err := h.links.Metadata(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		log.Printf("Failed to load link %q: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if link.OwnerID == nil || *link.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete this link"})
		return
	}

	if err := h.links.Delete(c.Request.Context(), code); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		log.Printf("Failed to delete link %q: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}

func (h *Handler) renderResolveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
	case errors.Is(err, services.ErrLinkExpired):
		c.JSON(http.StatusGone, gin.H{"error": "Link has expired"})
	case errors.Is(err, services.ErrPasswordRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Link requires a password", "validateUrl": "/api/validate-password"})
	case errors.Is(err, services.ErrWrongPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong password"})
	default:
		log.Printf("Failed to resolve link: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
