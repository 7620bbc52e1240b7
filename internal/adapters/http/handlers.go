package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/parley-chat/parley/internal/app"
	"github.com/parley-chat/parley/internal/auth"
	"github.com/parley-chat/parley/internal/domain"
)

// Handlers holds the services the REST surface delegates to. All real
// rules live in the app layer; this is thin glue.
type Handlers struct {
	Rooms  *app.RoomService
	Users  *app.UserService
	Tokens *auth.TokenManager
}

func NewHandlers(rooms *app.RoomService, users *app.UserService, tokens *auth.TokenManager) *Handlers {
	return &Handlers{Rooms: rooms, Users: users, Tokens: tokens}
}

// RequireUser admits requests carrying either a valid bearer token or a
// logged-in cookie session, and stores the caller's user id in the gin
// context.
func (h *Handlers) RequireUser(c *gin.Context) {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		uid, err := h.Tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err == nil {
			c.Set(sessionUserKey, string(uid))
			c.Next()
			return
		}
	}
	session := sessions.Default(c)
	if uid, ok := session.Get(sessionUserKey).(string); ok && uid != "" {
		c.Set(sessionUserKey, uid)
		c.Next()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

func currentUser(c *gin.Context) domain.UserID {
	return domain.UserID(c.GetString(sessionUserKey))
}

// POST /api/v1/users
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.Users.Register(c.Request.Context(), app.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfile(user))
}

// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	session := sessions.Default(c)
	session.Set(sessionUserKey, string(user.ID))
	if err := session.Save(); err != nil {
		log.Warn().Str("module", "adapters.http").Err(err).Msg("session save failed")
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token})
}

// GET /api/v1/users/:id — own profile only.
func (h *Handlers) Profile(c *gin.Context) {
	id := domain.UserID(c.Param("id"))
	if id != currentUser(c) {
		writeError(c, domain.ErrAccessDenied)
		return
	}
	user, err := h.Users.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfile(user))
}

// PUT /api/v1/users/:id
func (h *Handlers) UpdateProfile(c *gin.Context) {
	id := domain.UserID(c.Param("id"))
	if id != currentUser(c) {
		writeError(c, domain.ErrAccessDenied)
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.Users.UpdateByID(c.Request.Context(), id, app.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		ImageURL: req.ImageURL,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfile(user))
}

// DELETE /api/v1/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	id := domain.UserID(c.Param("id"))
	if id != currentUser(c) {
		writeError(c, domain.ErrAccessDenied)
		return
	}
	deleted, err := h.Users.DeleteByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/rooms
func (h *Handlers) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	room, err := h.Rooms.Create(c.Request.Context(), domain.RoomName(req.Name), currentUser(c), req.Private, req.Password, req.Capacity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoomInfo(*room))
}

// GET /api/v1/rooms — with ?name= resolves a room id from its unique
// name, otherwise returns one page of the catalog.
func (h *Handlers) ListRooms(c *gin.Context) {
	if name := c.Query("name"); name != "" {
		id, err := h.Rooms.RoomIDByName(c.Request.Context(), domain.RoomName(name))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
		return
	}
	page, size := pagination(c)
	result, err := h.Rooms.All(c.Request.Context(), page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rooms": lo.Map(result.Rooms, func(r domain.Room, _ int) RoomInfo { return toRoomInfo(r) }),
		"total": result.Total,
		"page":  result.Page,
		"size":  result.Size,
	})
}

// GET /api/v1/users/:id/rooms
func (h *Handlers) UserRooms(c *gin.Context) {
	page, size := pagination(c)
	result, err := h.Rooms.ByOwner(c.Request.Context(), domain.UserID(c.Param("id")), page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rooms": lo.Map(result.Rooms, func(r domain.Room, _ int) RoomInfo { return toRoomInfo(r) }),
		"total": result.Total,
		"page":  result.Page,
		"size":  result.Size,
	})
}

// POST /api/v1/rooms/:id/connect
func (h *Handlers) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	members, err := h.Rooms.Connect(c.Request.Context(), domain.RoomID(c.Param("id")), app.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// DELETE /api/v1/rooms/:id/members/:username — idempotent; disconnecting
// an absent member still answers 204.
func (h *Handlers) Disconnect(c *gin.Context) {
	h.Rooms.Disconnect(domain.RoomID(c.Param("id")), c.Param("username"))
	c.Status(http.StatusNoContent)
}

// GET /api/v1/rooms/:id/members
func (h *Handlers) Members(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"members": h.Rooms.Members(domain.RoomID(c.Param("id")))})
}

// DELETE /api/v1/rooms/:id
func (h *Handlers) DeleteRoom(c *gin.Context) {
	if err := h.Rooms.Delete(c.Request.Context(), domain.RoomID(c.Param("id"))); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "10"))
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return page, size
}

// writeError maps service errors to HTTP statuses. Unknown user and wrong
// password produce the same body so usernames cannot be enumerated.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrWrongPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, domain.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, domain.ErrRoomFull):
		c.JSON(http.StatusConflict, gin.H{"error": "room is full"})
	case errors.Is(err, domain.ErrRoomNameTaken), errors.Is(err, domain.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, app.ErrLookupTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "lookup timed out"})
	case errors.Is(err, domain.ErrUsernameEmpty), errors.Is(err, domain.ErrUsernameTooLong),
		errors.Is(err, domain.ErrRoomNameEmpty), errors.Is(err, domain.ErrRoomNameTooLong),
		errors.Is(err, domain.ErrBadCapacity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Str("module", "adapters.http").Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
