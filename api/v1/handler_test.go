package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funneltrack/internal/funnel"
	"funneltrack/internal/settings"
	"funneltrack/internal/testsupport"
)

func trackRequest(t *testing.T, target string, payload any) *http.Request {
	t.Helper()

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", target, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 Test Browser")
	return req
}

func TestTrackEventPublicAPIHandler(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)

	t.Run("accepts a valid event", func(t *testing.T) {
		req := trackRequest(t, "/api/v1/track", fiber.Map{
			"page_name":          "tregnar",
			"event_type":         "page_load",
			"visitor_session_id": "session_api_1",
		})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)

		defer resp.Body.Close()
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Event tracked successfully", body["message"])

		var stored funnel.TrackedEvent
		require.NoError(t, db.Where("visitor_session_id = ?", "session_api_1").First(&stored).Error)
		assert.Equal(t, "tregnar", stored.PageName)
		assert.Equal(t, "Mozilla/5.0 Test Browser", stored.UserAgent)
		assert.NotEmpty(t, stored.VisitorIP)
	})

	t.Run("rejects an unknown event type", func(t *testing.T) {
		req := trackRequest(t, "/api/v1/track", fiber.Map{
			"page_name":  "tregnar",
			"event_type": "mouse_wiggle",
		})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		defer resp.Body.Close()
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "INVALID_EVENT", body["code"])
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/track", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("honors forwarded user agent", func(t *testing.T) {
		req := trackRequest(t, "/api/v1/track", fiber.Map{
			"page_name":          "tregnar",
			"event_type":         "page_load",
			"visitor_session_id": "session_api_fwd",
		})
		req.Header.Set("X-Forwarded-User-Agent", "Original Browser/1.0")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)

		var stored funnel.TrackedEvent
		require.NoError(t, db.Where("visitor_session_id = ?", "session_api_fwd").First(&stored).Error)
		assert.Equal(t, "Original Browser/1.0", stored.UserAgent)
	})
}

func TestTrackEventAcknowledgesWhenAnalyticsDisabled(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)
	require.NoError(t, settings.SetupDefaultSettings(db))
	require.NoError(t, settings.UpdateSetting(db, settings.KeyAnalyticsEnabled, "false", 1))

	req := trackRequest(t, "/api/v1/track", fiber.Map{
		"page_name":          "tregnar",
		"event_type":         "page_load",
		"visitor_session_id": "session_disabled",
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	// Acknowledged but dropped.
	var count int64
	require.NoError(t, db.Model(&funnel.TrackedEvent{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestTrackEventBeaconHandler(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)

	t.Run("stores an abandon event", func(t *testing.T) {
		req := trackRequest(t, "/api/v1/track/beacon", fiber.Map{
			"page_name":          "tregnar",
			"event_type":         "checkout_abandon",
			"visitor_session_id": "session_beacon_1",
			"step_number":        2,
		})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)

		var stored funnel.TrackedEvent
		require.NoError(t, db.Where("visitor_session_id = ?", "session_beacon_1").First(&stored).Error)
		assert.Equal(t, funnel.EventCheckoutAbandon, stored.EventType)
	})

	t.Run("always returns 202 even for garbage", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/track/beacon", bytes.NewReader([]byte("garbage")))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})

	t.Run("always returns 202 for invalid events", func(t *testing.T) {
		req := trackRequest(t, "/api/v1/track/beacon", fiber.Map{
			"event_type": "checkout_abandon",
		})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})
}

func TestTrackOptionsPreflights(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)

	req := httptest.NewRequest("OPTIONS", "/api/v1/track", nil)
	req.Header.Set("Origin", "https://tregnar.com")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
