package httpx

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cqhs/articlecheck/internal/errs"
	"github.com/cqhs/articlecheck/internal/session"
)

func TestDo_BearerHeaderOnlyWithToken(t *testing.T) {
	t.Parallel()

	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	sess := &session.Memory{}
	c := New(srv.URL, sess)

	require.NoError(t, c.GetJSON(context.Background(), "/ping", nil))

	require.NoError(t, sess.Set("T"))
	require.NoError(t, c.GetJSON(context.Background(), "/ping", nil))

	require.Equal(t, []string{"", "Bearer T"}, gotAuth)
}

func TestDo_RequestIDAttached(t *testing.T) {
	t.Parallel()

	var rid string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid = r.Header.Get("X-Request-Id")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &session.Memory{})
	require.NoError(t, c.GetJSON(context.Background(), "/", nil))
	assert.Len(t, rid, 36)
}

func TestDo_UnauthorizedClearsTokenAndNotifies(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	sess := &session.Memory{}
	require.NoError(t, sess.Set("stale"))

	notified := 0
	c := New(srv.URL, sess, WithUnauthorizedHook(func() { notified++ }))

	err := c.GetJSON(context.Background(), "/users/me", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnauthorized))

	_, ok := sess.Get()
	assert.False(t, ok, "401 must clear the stored token")
	assert.Equal(t, 1, notified)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "expired", apiErr.Detail())
}

func TestDo_UnprocessableMapsToSentinel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":[{"msg":"field required"},{"msg":"value too short"}]}`,
			http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := New(srv.URL, &session.Memory{})
	err := c.PostJSON(context.Background(), "/token", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnprocessable))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "field required, value too short", apiErr.Detail())
}

func TestPostForm_EncodesBody(t *testing.T) {
	t.Parallel()

	var gotBody, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody, gotCT = string(b), r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &session.Memory{})
	form := url.Values{}
	form.Set("username", "u")
	form.Set("password", "p")
	require.NoError(t, c.PostForm(context.Background(), "/token", form, nil))
	assert.Equal(t, "password=p&username=u", gotBody)
	assert.Equal(t, "application/x-www-form-urlencoded", gotCT)
}

func TestPostMultipart_FieldsAndFile(t *testing.T) {
	t.Parallel()

	type part struct{ value string }
	got := map[string]part{}
	var fileName, fileBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if !assert.NoError(t, err) || !assert.Equal(t, "multipart/form-data", mt) {
			return
		}
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		for k, v := range r.MultipartForm.Value {
			got[k] = part{value: v[0]}
		}
		f, hdr, err := r.FormFile("submitted_file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		fileName, fileBody = hdr.Filename, string(b)
		w.Write([]byte(`{"report_id":"r9"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &session.Memory{})
	fields := map[string]string{"email": "e@x", "environment": "production"}
	file := FilePart{Field: "submitted_file", Name: "essay.txt", Content: strings.NewReader("hello")}

	var out struct {
		ReportID string `json:"report_id"`
	}
	require.NoError(t, c.PostMultipart(context.Background(), "/submit-file", fields, file, &out))
	assert.Equal(t, "r9", out.ReportID)
	assert.Equal(t, "e@x", got["email"].value)
	assert.Equal(t, "production", got["environment"].value)
	assert.Equal(t, "essay.txt", fileName)
	assert.Equal(t, "hello", fileBody)
}
