package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/api"
	repomemory "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	storememory "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

type testServer struct {
	*httptest.Server
	service simplecms.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	svc, err := simplecms.New(
		simplecms.WithRepository(repomemory.New()),
		simplecms.WithMediaStore(storememory.New()),
	)
	require.NoError(t, err)

	_, err = svc.CreateAuthor(context.Background(), simplecms.CreateAuthorRequest{
		Email:    "admin@example.com",
		Name:     "Admin",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	server := api.NewServer(svc, tokenAuth)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, service: svc}
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()

	body := `{"email":"admin@example.com","password":"s3cret-pass"}`
	resp, err := http.Post(ts.URL+"/api/v1/auth/login", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	require.NotEmpty(t, loginResp.Token)
	return loginResp.Token
}

type formFile struct {
	field, name, content string
}

func multipartRequest(t *testing.T, method, url, token string, fields map[string]string, files []formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "BEARER "+token)
	}
	return req
}

func decodeRecord(t *testing.T, resp *http.Response) api.RecordResponse {
	t.Helper()
	defer resp.Body.Close()

	var record api.RecordResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	return record
}

func TestServer_Login(t *testing.T) {
	ts := newTestServer(t)

	t.Run("valid credentials", func(t *testing.T) {
		token := ts.login(t)
		assert.NotEmpty(t, token)
	})

	t.Run("bad password", func(t *testing.T) {
		body := `{"email":"admin@example.com","password":"wrong"}`
		resp, err := http.Post(ts.URL+"/api/v1/auth/login", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/v1/auth/login", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestServer_AdminRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	req := multipartRequest(t, http.MethodPost, ts.URL+"/api/v1/admin/event", "", map[string]string{
		"title": "No Token",
	}, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_CreateRecord(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	t.Run("full payload with upload", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, ts.URL+"/api/v1/admin/event", token, map[string]string{
			"title":    "Tech Conference 2024!",
			"summary":  "Annual gathering",
			"tags":     `["go","conference"]`,
			"featured": "true",
		}, []formFile{
			{field: "image", name: "cover.jpg", content: "cover-bytes"},
			{field: "gallery", name: "g1.jpg", content: "g1"},
			{field: "gallery", name: "g2.jpg", content: "g2"},
		})

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		record := decodeRecord(t, resp)
		assert.Equal(t, int64(1), record.ID)
		assert.Equal(t, "tech-conference-2024", record.Slug)
		assert.Equal(t, "upcoming", record.Status)
		assert.True(t, record.Featured)
		assert.ElementsMatch(t, []string{"go", "conference"}, record.Tags)
		assert.NotEmpty(t, record.Image.PublicID)
		assert.Len(t, record.Gallery, 2)
		assert.NotEmpty(t, record.AuthorID)
	})

	t.Run("duplicate slug conflict", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, ts.URL+"/api/v1/admin/event", token, map[string]string{
			"title": "Tech Conference 2024",
		}, nil)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("missing title", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, ts.URL+"/api/v1/admin/blog", token, map[string]string{
			"summary": "no title here",
		}, nil)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var errResp api.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, "title", errResp.Field)
	})

	t.Run("invalid boolean", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, ts.URL+"/api/v1/admin/blog", token, map[string]string{
			"title":    "Bool Check",
			"featured": "maybe",
		}, nil)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var errResp api.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, "featured", errResp.Field)
	})

	t.Run("unknown kind", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, ts.URL+"/api/v1/admin/podcast", token, map[string]string{
			"title": "Nope",
		}, nil)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServer_PublicReads(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	req := multipartRequest(t, http.MethodPost, ts.URL+"/api/v1/admin/blog", token, map[string]string{
		"title": "My First Post",
		"tags":  "go,web",
	}, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	created := decodeRecord(t, resp)

	t.Run("get by slug tracks a view", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/blog/my-first-post")
		require.NoError(t, err)
		record := decodeRecord(t, resp)
		assert.Equal(t, created.ID, record.ID)
		assert.Equal(t, int64(1), record.ViewCount)
	})

	t.Run("get by id", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/api/v1/blog/%d", ts.URL, created.ID))
		require.NoError(t, err)
		record := decodeRecord(t, resp)
		assert.Equal(t, "my-first-post", record.Slug)
		assert.Equal(t, int64(2), record.ViewCount)
	})

	t.Run("list with tag filter", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/blog?tag=go")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var records []api.RecordResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
		require.Len(t, records, 1)
		assert.Equal(t, created.ID, records[0].ID)
	})

	t.Run("list with no matches", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/blog?tag=rust")
		require.NoError(t, err)
		defer resp.Body.Close()

		var records []api.RecordResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
		assert.Empty(t, records)
	})

	t.Run("missing record", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/blog/nothing-here")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServer_UpdateRecord(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	req := multipartRequest(t, http.MethodPost, ts.URL+"/api/v1/admin/work", token, map[string]string{
		"title":      "Portfolio Piece",
		"categories": "design,web",
	}, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	created := decodeRecord(t, resp)

	t.Run("partial update leaves other fields", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPut, fmt.Sprintf("%s/api/v1/admin/work/%d", ts.URL, created.ID), token, map[string]string{
			"summary": "now with a summary",
		}, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		record := decodeRecord(t, resp)
		assert.Equal(t, "Portfolio Piece", record.Title)
		assert.Equal(t, "now with a summary", record.Summary)
		assert.ElementsMatch(t, []string{"design", "web"}, record.Categories)
	})

	t.Run("explicit empty clears categories", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPut, fmt.Sprintf("%s/api/v1/admin/work/%d", ts.URL, created.ID), token, map[string]string{
			"categories": "",
		}, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		record := decodeRecord(t, resp)
		assert.Empty(t, record.Categories)
	})

	t.Run("update missing record", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPut, ts.URL+"/api/v1/admin/work/999", token, map[string]string{
			"summary": "x",
		}, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPut, ts.URL+"/api/v1/admin/work/not-a-number", token, map[string]string{
			"summary": "x",
		}, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestServer_DeleteRecord(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	req := multipartRequest(t, http.MethodPost, ts.URL+"/api/v1/admin/slide", token, map[string]string{
		"title": "Hero One",
	}, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	created := decodeRecord(t, resp)

	delReq, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/admin/slide/%d", ts.URL, created.ID), nil)
	require.NoError(t, err)
	delReq.Header.Set("Authorization", "BEARER "+token)

	resp, err = http.DefaultClient.Do(delReq)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(fmt.Sprintf("%s/api/v1/slide/%d", ts.URL, created.ID))
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
