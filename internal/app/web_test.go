// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/relabs-tech/motion_events/internal/app"
	"github.com/relabs-tech/motion_events/internal/events"
	"github.com/relabs-tech/motion_events/internal/motion"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeHistory struct {
	evs       []events.Event
	err       error
	lastLimit int
	lastKind  events.Kind
}

func (f *fakeHistory) Recent(_ context.Context, limit int, kind events.Kind) ([]events.Event, error) {
	f.lastLimit, f.lastKind = limit, kind
	return f.evs, f.err
}

func (f *fakeHistory) Counts(context.Context) (map[events.Kind]int, error) {
	return map[events.Kind]int{events.KindShake: len(f.evs)}, f.err
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestWebMotionEndpoint(t *testing.T) {
	srv := app.NewWebServer(nil)
	router := srv.Router()

	rec := get(t, router, "/api/motion")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv.HandleReport(app.ReportMessage{Source: "bench", Report: motion.Report{Pitch: -8, Spinning: true, Axis: motion.AxisY}})

	rec = get(t, router, "/api/motion")
	require.Equal(t, http.StatusOK, rec.Code)
	var got app.ReportMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "bench", got.Source)
	require.Equal(t, -8.0, got.Pitch)
	require.True(t, got.Spinning)
	require.Equal(t, motion.AxisY, got.Axis)
}

func TestWebHealth(t *testing.T) {
	srv := app.NewWebServer(&fakeHistory{})
	rec := get(t, srv.Router(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","have_report":false,"ws_clients":0,"history":true}`, rec.Body.String())
}

func TestWebEventsEndpoint(t *testing.T) {
	hist := &fakeHistory{evs: []events.Event{{ID: uuid.New(), Kind: events.KindShake, Axis: motion.AxisNone}}}
	router := app.NewWebServer(hist).Router()

	rec := get(t, router, "/api/events")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 50, hist.lastLimit)
	require.Equal(t, events.Kind(""), hist.lastKind)

	var body struct {
		Events []events.Event `json:"events"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	require.Equal(t, hist.evs[0].ID, body.Events[0].ID)

	rec = get(t, router, "/api/events?limit=5&kind=shake")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, hist.lastLimit)
	require.Equal(t, events.KindShake, hist.lastKind)

	for _, bad := range []string{"?limit=0", "?limit=abc", "?limit=100000", "?kind=wobble"} {
		rec = get(t, router, "/api/events"+bad)
		require.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}

	rec = get(t, router, "/api/events/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"shake":1}`, rec.Body.String())

	hist.err = errors.New("disk gone")
	rec = get(t, router, "/api/events")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebEventsWithoutHistory(t *testing.T) {
	router := app.NewWebServer(nil).Router()
	require.Equal(t, http.StatusServiceUnavailable, get(t, router, "/api/events").Code)
	require.Equal(t, http.StatusServiceUnavailable, get(t, router, "/api/events/stats").Code)
}

func TestWebSocketStreamsEvents(t *testing.T) {
	srv := app.NewWebServer(nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	// the hub registers the client after the upgrade completes
	require.Eventually(t, func() bool {
		rec := get(t, srv.Router(), "/health")
		return strings.Contains(rec.Body.String(), `"ws_clients":1`)
	}, 2*time.Second, 10*time.Millisecond)

	ev := events.Event{ID: uuid.New(), Kind: events.KindFreefall, Source: "bench", Magnitude: 0.05, Axis: motion.AxisNone}
	srv.HandleEvent(ev)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got events.Event
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, ev.ID, got.ID)
	require.Equal(t, events.KindFreefall, got.Kind)
}
