package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolltable/rolltable/internal/clock"
	"github.com/rolltable/rolltable/internal/infra/adapters/blob"
	"github.com/rolltable/rolltable/internal/infra/ports/http/dto"
	"github.com/rolltable/rolltable/internal/infra/ports/http/handlers"
	"github.com/rolltable/rolltable/internal/session"
	"github.com/rolltable/rolltable/internal/usecase"
)

const testSecret = "handler-test-secret"

func newHandlerFixture() *handlers.RoomHandler {
	store := blob.NewMemoryStore()
	cache := blob.NewListCache(store, blob.DefaultListTTL)
	clk := clock.New()
	snapshots := usecase.NewSnapshotUsecase(store, cache, clk)
	registry := usecase.NewRegistryUsecase(store, cache, snapshots, clk)

	return handlers.NewRoomHandler(registry, testSecret)
}

func doJSON(t *testing.T, handler echo.HandlerFunc, method, path, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetPath(path)
	for name, value := range params {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}

	require.NoError(t, handler(c))

	return rec
}

func TestCreateRoomHandler(t *testing.T) {
	h := newHandlerFixture()

	rec := doJSON(t, h.CreateRoomHandler, http.MethodPost, "/api/v1/rooms", `{"name":"Table One"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.CreateRoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, `^table-one-\d+$`, resp.ID)
}

func TestCreateRoomHandlerRejectsEmptyName(t *testing.T) {
	h := newHandlerFixture()

	rec := doJSON(t, h.CreateRoomHandler, http.MethodPost, "/api/v1/rooms", `{"name":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyRoomHandler(t *testing.T) {
	h := newHandlerFixture()

	rec := doJSON(t, h.CreateRoomHandler, http.MethodPost, "/api/v1/rooms", `{"name":"Locked","password":"secret"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.CreateRoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	tests := []struct {
		name     string
		body     string
		wantOK   bool
		hasToken bool
	}{
		{"wrong password", `{"password":"wrong"}`, false, false},
		{"correct password", `{"password":"secret"}`, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h.VerifyRoomHandler, http.MethodPost, "/api/v1/rooms/:id/verify", tt.body, map[string]string{"id": created.ID})
			require.Equal(t, http.StatusOK, rec.Code)

			var resp dto.VerifyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantOK, resp.OK)

			if tt.hasToken {
				require.NotEmpty(t, resp.Token)
				roomID, err := session.ParseRoomToken([]byte(testSecret), resp.Token)
				require.NoError(t, err)
				assert.Equal(t, created.ID, roomID)
			} else {
				assert.Empty(t, resp.Token)
			}
		})
	}
}

func TestVerifyRoomHandlerUnknownRoom(t *testing.T) {
	h := newHandlerFixture()

	rec := doJSON(t, h.VerifyRoomHandler, http.MethodPost, "/api/v1/rooms/:id/verify", `{"password":""}`, map[string]string{"id": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRoomHandlerIdempotent(t *testing.T) {
	h := newHandlerFixture()

	rec := doJSON(t, h.CreateRoomHandler, http.MethodPost, "/api/v1/rooms", `{"name":"Doomed"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.CreateRoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	for i := 0; i < 2; i++ {
		rec := doJSON(t, h.DeleteRoomHandler, http.MethodDelete, "/api/v1/rooms/:id", "", map[string]string{"id": created.ID})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = doJSON(t, h.ListRoomsHandler, http.MethodGet, "/api/v1/rooms", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list dto.ListRoomsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Rooms)
}

func TestListRoomsHandlerHidesPasswords(t *testing.T) {
	h := newHandlerFixture()

	rec := doJSON(t, h.CreateRoomHandler, http.MethodPost, "/api/v1/rooms", `{"name":"Locked","password":"secret"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h.ListRoomsHandler, http.MethodGet, "/api/v1/rooms", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, rec.Body.String(), "secret")

	var list dto.ListRoomsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Rooms, 1)
	assert.True(t, list.Rooms[0].HasPassword)
}
