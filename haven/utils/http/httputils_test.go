package httputils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		if in["message"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "A message is required."}`))
			return
		}
		w.Write([]byte(`{"echo": "` + in["message"] + `"}`))
	}))
	defer srv.Close()

	var out map[string]string
	require.NoError(t, PostJSON(context.Background(), srv.URL, map[string]string{"message": "hi"}, &out))
	require.Equal(t, "hi", out["echo"])

	err := PostJSON(context.Background(), srv.URL, map[string]string{}, &out)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusBadRequest, statusErr.Status)
	require.Equal(t, "A message is required.", statusErr.Message)
}

func TestGetJSON_SendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	var out map[string]bool
	require.NoError(t, GetJSON(context.Background(), srv.URL, "abc", &out))
	require.True(t, out["ok"])

	err := GetJSON(context.Background(), srv.URL, "", &out)
	require.EqualError(t, err, "bad status: 401")
}
