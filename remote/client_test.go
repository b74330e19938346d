package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestSearch(t *testing.T) {
	var gotQuery, gotLimit, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"skills":[
			{"id":"acme/log-explorer","name":"log-explorer","source":"acme/skills","installs":42,"description":"Explore logs"},
			{"id":"acme/logrotate","name":"logrotate","source":"acme/skills","installs":3}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	skills, err := c.Search(context.Background(), "log files", 5)
	assert.NoError(t, err)
	assert.Equal(t, "log files", gotQuery)
	assert.Equal(t, "5", gotLimit)
	assert.Equal(t, "application/json", gotAccept)
	assert.Len(t, skills, 2)
	assert.Equal(t, Skill{
		ID:          "acme/log-explorer",
		Name:        "log-explorer",
		Source:      "acme/skills",
		Installs:    42,
		Description: "Explore logs",
	}, skills[0])
	assert.Equal(t, "", skills[1].Description)
}

func TestSearchDefaultLimit(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`{"skills":[]}`))
	}))
	defer srv.Close()

	skills, err := NewClient(WithBaseURL(srv.URL)).Search(context.Background(), "x", 0)
	assert.NoError(t, err)
	assert.Equal(t, "10", gotLimit)
	assert.NotNil(t, skills)
	assert.Len(t, skills, 0)
}

func TestSearchMissingSkillsField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	skills, err := NewClient(WithBaseURL(srv.URL)).Search(context.Background(), "x", 1)
	assert.NoError(t, err)
	assert.NotNil(t, skills)
}

func TestSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).Search(context.Background(), "x", 1)
	assert.Error(t, err)
	var se *StatusError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.True(t, se.Temporary())
	assert.Contains(t, err.Error(), "503")
}

func TestStatusErrorTemporary(t *testing.T) {
	assert.True(t, (&StatusError{StatusCode: 429}).Temporary())
	assert.False(t, (&StatusError{StatusCode: 404}).Temporary())
	assert.False(t, (&StatusError{StatusCode: 500}).Temporary())
}

func TestSearchInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).Search(context.Background(), "x", 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")
}

func TestSearchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"skills":[]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	_, err := c.Search(context.Background(), "x", 1)
	assert.Error(t, err)
}

func TestSearchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"skills":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(WithBaseURL(srv.URL)).Search(ctx, "x", 1)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSearchInvalidURL(t *testing.T) {
	_, err := NewClient(WithBaseURL("://bad")).Search(context.Background(), "x", 1)
	assert.Error(t, err)
}
