package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, ts *testServer, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := ts.Client().Post(ts.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func registerAndLogin(t *testing.T, ts *testServer, username string) string {
	t.Helper()

	resp, _ := postJSON(t, ts, "/api/v1/users/register", map[string]string{
		"name": "User " + username, "username": username, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := postJSON(t, ts, "/api/v1/users/login", map[string]string{
		"username": username, "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	ts := startTestServer(t, nil)

	resp, body := postJSON(t, ts, "/api/v1/users/register", map[string]string{
		"name": "Alice", "username": "alice", "password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User Registered", body["message"])

	resp, _ = postJSON(t, ts, "/api/v1/users/register", map[string]string{
		"name": "Alice", "username": "alice", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = postJSON(t, ts, "/api/v1/users/register", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, ts, "/api/v1/users/register", map[string]string{
		"name": "Bo", "username": "bo", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = postJSON(t, ts, "/api/v1/users/login", map[string]string{
		"username": "alice", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, _ = postJSON(t, ts, "/api/v1/users/login", map[string]string{
		"username": "alice", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = postJSON(t, ts, "/api/v1/users/login", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMeetingActivity(t *testing.T) {
	ts := startTestServer(t, nil)
	token := registerAndLogin(t, ts, "carol")

	for _, code := range []string{"daily-sync", "retro"} {
		resp, body := postJSON(t, ts, "/api/v1/users/add_to_activity", map[string]string{
			"token": token, "meetingCode": code,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "Added code to history", body["message"])
		assert.NotEmpty(t, body["date"])
	}

	resp, _ := postJSON(t, ts, "/api/v1/users/add_to_activity", map[string]string{
		"token": "forged", "meetingCode": "x",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	getResp, err := ts.Client().Get(ts.URL + "/api/v1/users/get_all_activity?token=" + url.QueryEscape(token))
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var entries []struct {
		MeetingCode string `json:"meetingCode"`
		Date        string `json:"date"`
	}
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&entries))
	require.Len(t, entries, 2)
	assert.ElementsMatch(t, []string{"daily-sync", "retro"}, []string{entries[0].MeetingCode, entries[1].MeetingCode})

	badResp, err := ts.Client().Get(ts.URL + "/api/v1/users/get_all_activity?token=forged")
	require.NoError(t, err)
	defer badResp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, badResp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := startTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/users/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://meet.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
