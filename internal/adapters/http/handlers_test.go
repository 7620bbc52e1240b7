package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/internal/app"
	"github.com/parley-chat/parley/internal/auth"
	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/core"
	"github.com/parley-chat/parley/internal/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{Mode: "test", Secret: "test-secret", TokenTTL: time.Hour}
	registry := core.NewMembershipRegistry()
	rooms := app.NewRoomService(storage.NewRoomStore(db), storage.NewUserStore(db), registry, time.Second)
	users := app.NewUserService(storage.NewUserStore(db))
	tokens := auth.NewTokenManager(cfg.Secret, cfg.TokenTTL)

	return SetupRouter(cfg, NewHandlers(rooms, users, tokens))
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) (userID, token string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/users", RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "longenough",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var profile ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: username, Password: "longenough"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	return profile.ID, login.Token
}

func createRoom(t *testing.T, r *gin.Engine, token string, reqBody CreateRoomRequest) RoomInfo {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/rooms", reqBody, token)
	require.Equal(t, http.StatusOK, w.Code)
	var room RoomInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))
	return room
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/users", RegisterRequest{
		Username: "alice",
		Email:    "not-an-email",
		Password: "longenough",
	}, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "alice", Password: "badpassword"}, "")

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRoom_RequiresAuth(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/rooms", CreateRoomRequest{Name: "lobby", Capacity: 5}, "")

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConnectFlow(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(t)
	_, token := registerAndLogin(t, r, "alice")
	registerAndLogin(t, r, "bob")

	room := createRoom(t, r, token, CreateRoomRequest{Name: "solo", Capacity: 1})

	// alice connects
	w := doJSON(t, r, http.MethodPost, "/api/v1/rooms/"+room.ID+"/connect", ConnectRequest{Username: "alice"}, "")
	req.Equal(http.StatusOK, w.Code)

	// room is full for bob
	w = doJSON(t, r, http.MethodPost, "/api/v1/rooms/"+room.ID+"/connect", ConnectRequest{Username: "bob"}, "")
	req.Equal(http.StatusConflict, w.Code)

	// member list shows alice only
	w = doJSON(t, r, http.MethodGet, "/api/v1/rooms/"+room.ID+"/members", nil, "")
	req.Equal(http.StatusOK, w.Code)
	var members struct {
		Members []struct {
			Username string `json:"username"`
		} `json:"members"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &members))
	req.Len(members.Members, 1)
	req.Equal("alice", members.Members[0].Username)

	// disconnect is authenticated and idempotent
	w = doJSON(t, r, http.MethodDelete, "/api/v1/rooms/"+room.ID+"/members/alice", nil, token)
	req.Equal(http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/api/v1/rooms/"+room.ID+"/members/alice", nil, token)
	req.Equal(http.StatusNoContent, w.Code)

	// bob fits now
	w = doJSON(t, r, http.MethodPost, "/api/v1/rooms/"+room.ID+"/connect", ConnectRequest{Username: "bob"}, "")
	req.Equal(http.StatusOK, w.Code)
}

func TestConnect_PrivateRoom(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(t)
	_, token := registerAndLogin(t, r, "carol")

	room := createRoom(t, r, token, CreateRoomRequest{Name: "vault", Private: true, Password: "secret", Capacity: 5})

	w := doJSON(t, r, http.MethodPost, "/api/v1/rooms/"+room.ID+"/connect", ConnectRequest{Username: "carol", Password: "wrong"}, "")
	req.Equal(http.StatusUnauthorized, w.Code)

	// Unknown user gets the exact same response as a wrong password.
	wGhost := doJSON(t, r, http.MethodPost, "/api/v1/rooms/"+room.ID+"/connect", ConnectRequest{Username: "ghost", Password: "secret"}, "")
	req.Equal(w.Code, wGhost.Code)
	req.Equal(w.Body.String(), wGhost.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/v1/rooms/"+room.ID+"/connect", ConnectRequest{Username: "carol", Password: "secret"}, "")
	req.Equal(http.StatusOK, w.Code)
}

func TestConnect_UnknownRoom(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/v1/rooms/missing/connect", ConnectRequest{Username: "alice"}, "")

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoomIDByName(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(t)
	_, token := registerAndLogin(t, r, "alice")
	room := createRoom(t, r, token, CreateRoomRequest{Name: "lobby", Capacity: 5})

	w := doJSON(t, r, http.MethodGet, "/api/v1/rooms?name=lobby", nil, "")
	req.Equal(http.StatusOK, w.Code)
	var got struct {
		ID string `json:"id"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	req.Equal(room.ID, got.ID)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rooms?name=missing", nil, "")
	req.Equal(http.StatusNotFound, w.Code)
}

func TestDeleteRoom_EvictsMembers(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(t)
	_, token := registerAndLogin(t, r, "alice")
	room := createRoom(t, r, token, CreateRoomRequest{Name: "lobby", Capacity: 5})

	w := doJSON(t, r, http.MethodPost, "/api/v1/rooms/"+room.ID+"/connect", ConnectRequest{Username: "alice"}, "")
	req.Equal(http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/rooms/"+room.ID, nil, token)
	req.Equal(http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/rooms/"+room.ID+"/connect", ConnectRequest{Username: "alice"}, "")
	req.Equal(http.StatusNotFound, w.Code)
}

func TestProfile_SelfOnly(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(t)
	aliceID, aliceToken := registerAndLogin(t, r, "alice")
	bobID, _ := registerAndLogin(t, r, "bob")

	w := doJSON(t, r, http.MethodGet, "/api/v1/users/"+aliceID, nil, aliceToken)
	req.Equal(http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/users/"+bobID, nil, aliceToken)
	req.Equal(http.StatusForbidden, w.Code)
}

func TestUpdateProfile_PasswordConfirmMismatch(t *testing.T) {
	r := newTestRouter(t)
	aliceID, token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPut, "/api/v1/users/"+aliceID, UpdateProfileRequest{
		Password:        "newpassword",
		ConfirmPassword: "different",
	}, token)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUser(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(t)
	aliceID, token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodDelete, "/api/v1/users/"+aliceID, nil, token)
	req.Equal(http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/users/"+aliceID, nil, token)
	req.Equal(http.StatusNotFound, w.Code)
}

func TestUserRooms(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(t)
	aliceID, aliceToken := registerAndLogin(t, r, "alice")
	_, bobToken := registerAndLogin(t, r, "bob")
	createRoom(t, r, aliceToken, CreateRoomRequest{Name: "alice-room", Capacity: 5})
	createRoom(t, r, bobToken, CreateRoomRequest{Name: "bob-room", Capacity: 5})

	w := doJSON(t, r, http.MethodGet, "/api/v1/users/"+aliceID+"/rooms", nil, aliceToken)
	req.Equal(http.StatusOK, w.Code)
	var got struct {
		Rooms []RoomInfo `json:"rooms"`
		Total int        `json:"total"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	req.Equal(1, got.Total)
	req.Equal("alice-room", got.Rooms[0].Name)
}

func TestListRooms_Paged(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(t)
	_, token := registerAndLogin(t, r, "alice")
	for _, name := range []string{"alpha", "beta", "gamma"} {
		createRoom(t, r, token, CreateRoomRequest{Name: name, Capacity: 5})
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/rooms?page=0&size=2", nil, "")
	req.Equal(http.StatusOK, w.Code)
	var got struct {
		Rooms []RoomInfo `json:"rooms"`
		Total int        `json:"total"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	req.Equal(3, got.Total)
	req.Len(got.Rooms, 2)
	req.Equal("alpha", got.Rooms[0].Name)
}
