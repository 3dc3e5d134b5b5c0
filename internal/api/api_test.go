package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/nettd/lobby-server/internal/api"
	"github.com/nettd/lobby-server/internal/factory"
	"github.com/nettd/lobby-server/internal/testutil"
)

type APISuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.Require().NoError(s.app.RoomService.EnsureDefaultRoom(context.Background()))

	router := api.NewRouter(api.RouterConfig{
		Logger:          testutil.NopLogger(),
		IdentityService: s.app.IdentityService,
		RoomService:     s.app.RoomService,
		SessionTracker:  s.app.SessionTracker,
		Gateway:         s.app.Gateway,
	})
	s.server = httptest.NewServer(router)
}

func (s *APISuite) TearDownTest() {
	s.server.Close()
}

func (s *APISuite) get(path string) *http.Response {
	resp, err := http.Get(s.server.URL + path)
	s.Require().NoError(err)
	return resp
}

func (s *APISuite) postJSON(path string, body any) *http.Response {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)
	resp, err := http.Post(s.server.URL+path, "application/json", bytes.NewReader(payload))
	s.Require().NoError(err)
	return resp
}

func (s *APISuite) decode(resp *http.Response, out any) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}

func (s *APISuite) errorCode(resp *http.Response) string {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	s.decode(resp, &body)
	return body.Error.Code
}

func (s *APISuite) TestHealth() {
	resp := s.get("/api/v1/health")
	s.Equal(http.StatusOK, resp.StatusCode)

	var health struct {
		Status         string `json:"status"`
		ActiveSessions int    `json:"active_sessions"`
		Rooms          int    `json:"rooms"`
	}
	s.decode(resp, &health)
	s.Equal("ok", health.Status)
	s.Zero(health.ActiveSessions)
	s.Equal(1, health.Rooms)
}

func (s *APISuite) TestRegisterUser() {
	resp := s.postJSON("/api/v1/users", map[string]string{
		"username": "alice",
		"secret":   "s3cret",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var user struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	s.decode(resp, &user)
	s.NotEmpty(user.ID)
	s.Equal("alice", user.Username)
}

func (s *APISuite) TestRegisterShortUsername() {
	resp := s.postJSON("/api/v1/users", map[string]string{"username": "ab"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("USERNAME_LENGTH", s.errorCode(resp))
}

func (s *APISuite) TestRegisterTakenUsername() {
	resp := s.postJSON("/api/v1/users", map[string]string{"username": "alice", "secret": "one"})
	s.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.postJSON("/api/v1/users", map[string]string{"username": "alice", "secret": "two"})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("USERNAME_TAKEN", s.errorCode(resp))
}

func (s *APISuite) TestRegisterMalformedBody() {
	resp, err := http.Post(s.server.URL+"/api/v1/users", "application/json", bytes.NewReader([]byte("{")))
	s.Require().NoError(err)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (s *APISuite) TestListRooms() {
	s.app.MockRandom.QueueString("AB12")
	_, err := s.app.RoomService.CreateRoom(context.Background(), 2)
	s.Require().NoError(err)

	resp := s.get("/api/v1/rooms")
	s.Equal(http.StatusOK, resp.StatusCode)

	var list struct {
		Rooms []struct {
			Code        string `json:"code"`
			Capacity    int    `json:"capacity"`
			MemberCount int    `json:"member_count"`
		} `json:"rooms"`
	}
	s.decode(resp, &list)

	s.Require().Len(list.Rooms, 2)
	codes := []string{list.Rooms[0].Code, list.Rooms[1].Code}
	s.Contains(codes, "MAIN")
	s.Contains(codes, "AB12")
}

func (s *APISuite) TestGetRoom() {
	resp := s.get("/api/v1/rooms/main")
	s.Equal(http.StatusOK, resp.StatusCode)

	var room struct {
		Code     string `json:"code"`
		Capacity int    `json:"capacity"`
	}
	s.decode(resp, &room)
	s.Equal("MAIN", room.Code)
	s.Zero(room.Capacity)
}

func (s *APISuite) TestRoomDetailOmitsChatLog() {
	// The endpoint is unauthenticated; the room's chat history must not
	// be readable through it
	s.Require().NoError(s.app.ChatService.PostSystemMessage(context.Background(), "MAIN", "hello lobby"))

	resp := s.get("/api/v1/rooms/MAIN")
	s.Equal(http.StatusOK, resp.StatusCode)

	var body map[string]any
	s.decode(resp, &body)
	s.NotContains(body, "chat")
}

func (s *APISuite) TestGetUnknownRoom() {
	resp := s.get("/api/v1/rooms/ZZZZ")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("ROOM_NOT_FOUND", s.errorCode(resp))
}

func (s *APISuite) TestGetMalformedRoomCode() {
	for _, code := range []string{"abc", "TOOLONG", "A_12"} {
		resp := s.get(fmt.Sprintf("/api/v1/rooms/%s", code))
		s.Equal(http.StatusBadRequest, resp.StatusCode)
		s.Equal("MALFORMED_ROOM_CODE", s.errorCode(resp))
	}
}
