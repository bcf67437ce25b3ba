// Package handlers exposes the link and account operations over HTTP.
package handlers

import (
	"linkcut/auth"
	"linkcut/services"
	"linkcut/storage"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	links *services.Links
	users storage.UserStore
	auth  *auth.Auth
}

// New creates a Handler.
func New(links *services.Links, users storage.UserStore, authn *auth.Auth) *Handler {
	return &Handler{
		links: links,
		users: users,
		auth:  authn,
	}
}
