package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
	"github.com/lordwhitefire/new-portfolio/internal/cms/cmstest"
	"github.com/lordwhitefire/new-portfolio/internal/pages"
	"github.com/lordwhitefire/new-portfolio/internal/site"
)

var testManifest = site.Manifest{
	Pages: []site.Page{
		{Path: "/index.html", Template: "home.html", Controller: pages.Home},
		{Path: "/contact.html", Template: "contact.html", Controller: pages.Contact},
		{Path: "/broken.html", Template: "missing.html", Controller: pages.About},
	},
}

func newServer(t *testing.T, fixture *cmstest.Fixture, publicDir string) *httptest.Server {
	t.Helper()
	templates := site.NewTemplates(os.DirFS(filepath.Join("..", "pages", "testdata")), false)
	hydrator := pages.New(fixture, cms.Images{ProjectID: "proj", Dataset: "production"})
	router := NewRouter(Config{
		Renderer:  site.NewRenderer(testManifest, templates, hydrator),
		Logger:    zap.NewNop(),
		PublicDir: publicDir,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, cmstest.New(nil), "")
	resp, body := get(t, srv.URL+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))
}

func TestServesHydratedPage(t *testing.T) {
	fixture := cmstest.New(map[string]string{
		cms.TypeContact: `{"email": "hello@firesage.dev", "phone": "+1 555 0100"}`,
	})
	srv := newServer(t, fixture, "")

	resp, body := get(t, srv.URL+"/contact.html")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, string(pages.Hydrated), resp.Header.Get(OutcomeHeader))
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, "hello@firesage.dev", doc.Find("#contact-email").Text())
	require.Equal(t, "tel:+1 555 0100", doc.Find("#contact-phone-link").AttrOr("href", ""))
}

func TestRootServesIndex(t *testing.T) {
	fixture := cmstest.New(map[string]string{cms.TypeSiteSettings: `{"title": "FireSage"}`})
	srv := newServer(t, fixture, "")

	resp, body := get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, "FireSage", doc.Find("title").Text())
}

func TestFailedPassServesTemplate(t *testing.T) {
	fixture := cmstest.New(nil)
	fixture.Errors[cms.TypeContact] = errors.New("upstream down")
	srv := newServer(t, fixture, "")

	resp, body := get(t, srv.URL+"/contact.html")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, string(pages.Failed), resp.Header.Get(OutcomeHeader))

	raw, err := os.ReadFile(filepath.Join("..", "pages", "testdata", "contact.html"))
	require.NoError(t, err)
	require.Equal(t, string(raw), string(body))
}

func TestMissingTemplateIs500(t *testing.T) {
	srv := newServer(t, cmstest.New(nil), "")
	resp, _ := get(t, srv.URL+"/broken.html")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestUnknownPathIs404(t *testing.T) {
	srv := newServer(t, cmstest.New(nil), "")
	resp, _ := get(t, srv.URL+"/nowhere.html")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPreview(t *testing.T) {
	fixture := cmstest.New(nil)
	fixture.Errors[cms.TypeContact] = errors.New("upstream down")
	srv := newServer(t, fixture, "")

	resp, body := get(t, srv.URL+"/api/preview/contact")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got previewResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, "contact", got.Controller)
	require.Equal(t, "/contact.html", got.Path)
	require.Equal(t, pages.Failed, got.Outcome)
	require.Contains(t, got.Error, "upstream down")
	require.Positive(t, got.Bytes)

	resp, body = get(t, srv.URL+"/api/preview/projects")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Equal(t, "unknown_controller", envelope["error"])
	require.NotEmpty(t, envelope["request_id"])

	resp, _ = get(t, srv.URL+"/api/preview/about")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestServesAssets(t *testing.T) {
	public := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(public, "assets", "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(public, "assets", "css", "site.css"), []byte("body{}"), 0o644))
	srv := newServer(t, cmstest.New(nil), public)

	resp, body := get(t, srv.URL+"/assets/css/site.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "body{}", string(body))
}
