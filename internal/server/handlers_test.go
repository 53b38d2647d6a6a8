package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokrova/contentctl/internal/config"
	"github.com/pokrova/contentctl/internal/github"
	"github.com/pokrova/contentctl/internal/models"
	"github.com/pokrova/contentctl/internal/translate"
)

func newTestServer(gw *github.MockGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Owner: "pokrova", Repo: "pokrova-site"}
	srv := New(cfg, translate.NewClient(""), nil, func(token string) github.Gateway {
		return gw
	})
	return srv.Router()
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer testtoken")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMissingTokenRejected(t *testing.T) {
	router := newTestServer(github.NewMockGateway())

	req := httptest.NewRequest("GET", "/api/articles", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownCollectionRejected(t *testing.T) {
	router := newTestServer(github.NewMockGateway())

	w := doRequest(t, router, "GET", "/api/pages", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCollection(t *testing.T) {
	gw := github.NewMockGateway()
	gw.AddFile("main", "data/articles/feast-2025/index.json", []byte(`[{"language":"uk","category":"news","title":"Свято"}]`))
	router := newTestServer(gw)

	w := doRequest(t, router, "GET", "/api/articles", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var previews []models.Preview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &previews))
	require.Len(t, previews, 1)
	assert.Equal(t, "feast-2025", previews[0].UID)
	assert.Equal(t, "Свято", previews[0].Title)
}

func TestGetRecord(t *testing.T) {
	gw := github.NewMockGateway()
	gw.AddFile("main", "data/articles/feast-2025/index.json", []byte(`[{"language":"uk","category":"news","title":"Свято"}]`))
	router := newTestServer(gw)

	w := doRequest(t, router, "GET", "/api/articles/feast-2025", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload draftPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "feast-2025", payload.UID)
	assert.Equal(t, models.Articles, payload.Collection)
	require.Len(t, payload.Variants, 3)
	assert.Equal(t, "Свято", payload.Variants[models.Ukrainian].Title)
	assert.True(t, payload.Variants[models.English].Empty())
}

func TestCreateRecord(t *testing.T) {
	gw := github.NewMockGateway()
	router := newTestServer(gw)

	w := doRequest(t, router, "POST", "/api/articles", gin.H{"uid": "feast-2025"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp mutationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, 1, resp.PRNumber)
	assert.True(t, strings.HasPrefix(resp.Branch, "content/articles/feast-2025-"))
	assert.True(t, resp.AutoMerge)
	assert.NotEmpty(t, resp.Steps)

	require.Len(t, gw.PRs, 1)
	assert.Equal(t, "Content: new article feast-2025", gw.PRs[0].Title)
}

func TestCreateRecord_RequiresUID(t *testing.T) {
	router := newTestServer(github.NewMockGateway())

	w := doRequest(t, router, "POST", "/api/articles", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveRecord(t *testing.T) {
	gw := github.NewMockGateway()
	router := newTestServer(gw)

	w := doRequest(t, router, "PUT", "/api/articles/feast-2025", gin.H{
		"variants": gin.H{
			"uk": gin.H{"category": "news", "title": "Свято", "images": []string{"hero.jpg"}},
		},
		"uploads": []gin.H{
			{"name": "hero.jpg", "content": "anBlZ2J5dGVz"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp mutationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "https://example.test/pull/1", resp.PRURL)

	uploaded := gw.Files[resp.Branch+"\x00"+"data/articles/feast-2025/images/hero.jpg"]
	assert.Equal(t, []byte("jpegbytes"), uploaded)
	doc := gw.Files[resp.Branch+"\x00"+"data/articles/feast-2025/index.json"]
	assert.Contains(t, string(doc), "Свято")
}

func TestSaveRecord_InvalidUploadEncoding(t *testing.T) {
	router := newTestServer(github.NewMockGateway())

	w := doRequest(t, router, "PUT", "/api/articles/feast-2025", gin.H{
		"uploads": []gin.H{{"name": "hero.jpg", "content": "!!!"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveRecord_FailureReturnsStepsSoFar(t *testing.T) {
	gw := github.NewMockGateway()
	gw.FailOn = "pr"
	router := newTestServer(gw)

	w := doRequest(t, router, "PUT", "/api/articles/feast-2025", gin.H{
		"variants": gin.H{"uk": gin.H{"title": "Свято"}},
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp mutationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, "Creating pull request", resp.Steps[len(resp.Steps)-1])
}

func TestDeleteRecord(t *testing.T) {
	gw := github.NewMockGateway()
	gw.AddFile("main", "data/schedule/liturgy-sunday/index.json", []byte(`[{"language":"uk"}]`))
	router := newTestServer(gw)

	w := doRequest(t, router, "DELETE", "/api/schedule/liturgy-sunday", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, gw.PRs, 1)
	assert.Equal(t, "Content: delete schedule liturgy-sunday", gw.PRs[0].Title)
}

func TestTranslateWithoutEndpointEchoesDraft(t *testing.T) {
	router := newTestServer(github.NewMockGateway())

	w := doRequest(t, router, "POST", "/api/articles/feast-2025/translate", gin.H{
		"variants": gin.H{"uk": gin.H{"title": "Свято"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var payload draftPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "Свято", payload.Variants[models.Ukrainian].Title)
	assert.Empty(t, payload.Variants[models.English].Title)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, statusCode(&github.RemoteError{Status: 401}))
	assert.Equal(t, http.StatusForbidden, statusCode(&github.RemoteError{Status: 403}))
	assert.Equal(t, http.StatusConflict, statusCode(&github.RemoteError{Status: 409}))
	assert.Equal(t, http.StatusBadGateway, statusCode(&github.RemoteError{Status: 500}))
	assert.Equal(t, http.StatusBadGateway, statusCode(assert.AnError))
}

func TestProviderAuthErrorPassesThrough(t *testing.T) {
	gw := github.NewMockGateway()
	gw.FailOn = "list"
	gw.Err = &github.RemoteError{Status: 401, Message: "bad credentials"}
	router := newTestServer(gw)

	w := doRequest(t, router, "GET", "/api/articles", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
