// Package http wires the REST surface: gin router, session/bearer auth
// and the request validation hooks.
package http

import (
	"regexp"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/parley-chat/parley/internal/config"
)

const sessionUserKey = "user_id"

var roomNameRe = regexp.MustCompile(`^[\p{L}\d][\p{L}\d _-]*$`)

// roomName rejects names that would be unusable as lookup keys or in
// UIs: leading separators, control characters, emptiness.
func roomName(fl validator.FieldLevel) bool {
	return roomNameRe.MatchString(fl.Field().String())
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("roomname", roomName)
	}
}

// SetupRouter builds the full route table under /api/v1.
func SetupRouter(cfg *config.Config, h *Handlers) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidations()

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ParleySession", store))

	api := r.Group("/api/v1")

	api.POST("/users", h.Register)
	api.POST("/auth/login", h.Login)

	api.GET("/rooms", h.ListRooms)
	api.POST("/rooms/:id/connect", h.Connect)
	api.GET("/rooms/:id/members", h.Members)

	authed := api.Group("", h.RequireUser)
	authed.GET("/users/:id", h.Profile)
	authed.PUT("/users/:id", h.UpdateProfile)
	authed.DELETE("/users/:id", h.DeleteUser)
	authed.GET("/users/:id/rooms", h.UserRooms)
	authed.POST("/rooms", h.CreateRoom)
	authed.DELETE("/rooms/:id", h.DeleteRoom)
	authed.DELETE("/rooms/:id/members/:username", h.Disconnect)

	return r
}
