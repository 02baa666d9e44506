package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radamhu/stremio-musortv/internal/catalog"
	"github.com/radamhu/stremio-musortv/internal/clock/fixed"
	"github.com/radamhu/stremio-musortv/internal/musor"
	"github.com/radamhu/stremio-musortv/internal/streams"
)

var testNow = time.Date(2025, 10, 18, 21, 0, 0, 0, time.Local)

type fakeFetcher struct {
	listings []musor.Listing
	err      error
}

func (f *fakeFetcher) Fetch(context.Context, bool) ([]musor.Listing, error) {
	return f.listings, f.err
}

type fakeHealth struct {
	snap musor.HealthSnapshot
}

func (f *fakeHealth) Status() musor.HealthSnapshot { return f.snap }

func testServer(t *testing.T, fetcher *fakeFetcher, health HealthReporter) *Server {
	t.Helper()
	svc := catalog.NewService(fetcher, nil, fixed.At(testNow), time.Minute, zap.NewNop())
	resolver := streams.New(map[string]string{"RTL Klub": "https://example.org/rtl.m3u8"})
	return NewServer(svc, resolver, health, zap.NewNop())
}

func filmListing() musor.Listing {
	return musor.Listing{
		Title:    "Mátrix",
		Start:    "2025-10-18T21:30:00",
		Channel:  "RTL Klub",
		Category: "akció, film",
		Poster:   "https://musor.tv/img1.jpg",
	}
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRoot_RedirectsToManifest(t *testing.T) {
	s := testServer(t, &fakeFetcher{}, nil)
	rec := get(t, s, "/")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/manifest.json", rec.Header().Get("Location"))
}

func TestManifest_DescribesCatalogAndResources(t *testing.T) {
	s := testServer(t, &fakeFetcher{}, nil)
	rec := get(t, s, "/manifest.json")
	require.Equal(t, http.StatusOK, rec.Code)

	var m manifest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	require.Equal(t, "hu.live.movies", m.ID)
	require.ElementsMatch(t, []string{"catalog", "meta", "stream"}, m.Resources)
	require.Len(t, m.Catalogs, 1)
	require.Equal(t, "hu-live", m.Catalogs[0].ID)
	require.Len(t, m.Catalogs[0].Extra, 2)
	require.Equal(t, []string{"now", "next2h", "tonight"}, m.Catalogs[0].Extra[1].Options)
}

func TestCatalog_ReturnsMetas(t *testing.T) {
	s := testServer(t, &fakeFetcher{listings: []musor.Listing{filmListing()}}, nil)
	rec := get(t, s, "/catalog/movie/hu-live.json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body struct {
		Metas []catalog.MetaPreview `json:"metas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Metas, 1)
	require.Equal(t, "Mátrix", body.Metas[0].Name)
	require.Equal(t, "21:30 • RTL Klub", body.Metas[0].ReleaseInfo)
}

func TestCatalog_UnknownIDIs404(t *testing.T) {
	s := testServer(t, &fakeFetcher{}, nil)
	require.Equal(t, http.StatusNotFound, get(t, s, "/catalog/movie/other.json").Code)
	require.Equal(t, http.StatusNotFound, get(t, s, "/catalog/series/hu-live.json").Code)
}

func TestCatalog_ExtraSegmentSearchAndTime(t *testing.T) {
	later := filmListing()
	later.Title = "Vertigo"
	later.Start = "2025-10-18T22:45:00" // inside next2h, outside now
	s := testServer(t, &fakeFetcher{listings: []musor.Listing{filmListing(), later}}, nil)

	decode := func(rec *httptest.ResponseRecorder) []catalog.MetaPreview {
		var body struct {
			Metas []catalog.MetaPreview `json:"metas"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body.Metas
	}

	metas := decode(get(t, s, "/catalog/movie/hu-live/time=next2h.json"))
	require.Len(t, metas, 2)

	metas = decode(get(t, s, "/catalog/movie/hu-live/time=now.json"))
	require.Len(t, metas, 1)

	extra := url.PathEscape("search=" + url.QueryEscape("mátrix") + "&time=next2h")
	metas = decode(get(t, s, "/catalog/movie/hu-live/"+extra+".json"))
	require.Len(t, metas, 1)
	require.Equal(t, "Mátrix", metas[0].Name)
}

func TestCatalog_FetchFailureDegradesToEmpty(t *testing.T) {
	s := testServer(t, &fakeFetcher{err: errors.New("scrape down")}, nil)
	rec := get(t, s, "/catalog/movie/hu-live.json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"metas":[]}`, rec.Body.String())
}

func TestMeta_ByContentID(t *testing.T) {
	l := filmListing()
	s := testServer(t, &fakeFetcher{listings: []musor.Listing{l}}, nil)
	rec := get(t, s, "/meta/movie/"+catalog.MetaID(l)+".json")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Meta *catalog.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Meta)
	require.Equal(t, "Mátrix", body.Meta.Name)
	require.Contains(t, body.Meta.Description, "Csatorna: RTL Klub")
}

func TestMeta_UnknownIDIsNullMeta(t *testing.T) {
	s := testServer(t, &fakeFetcher{}, nil)
	rec := get(t, s, "/meta/movie/musortv:m2:1760810400:hirado.json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"meta":null}`, rec.Body.String())
}

func TestStream_MappedAndUnmapped(t *testing.T) {
	l := filmListing()
	s := testServer(t, &fakeFetcher{listings: []musor.Listing{l}}, nil)

	rec := get(t, s, "/stream/movie/"+catalog.MetaID(l)+".json")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Streams []streams.Stream `json:"streams"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Streams, 1)
	require.Equal(t, "https://example.org/rtl.m3u8", body.Streams[0].URL)

	rec = get(t, s, "/stream/movie/musortv:m2:1760810400:hirado.json")
	require.JSONEq(t, `{"streams":[]}`, rec.Body.String())

	rec = get(t, s, "/stream/series/tt0133093.json")
	require.JSONEq(t, `{"streams":[]}`, rec.Body.String())
}

func TestHealthz_ReportsOrchestratorState(t *testing.T) {
	now := testNow
	s := testServer(t, &fakeFetcher{}, &fakeHealth{snap: musor.HealthSnapshot{
		Healthy:       true,
		Initialized:   true,
		LastSuccessAt: &now,
	}})
	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap musor.HealthSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.True(t, snap.Healthy)
	require.True(t, snap.Initialized)
}

func TestHealthz_UninitializedIs503(t *testing.T) {
	s := testServer(t, &fakeFetcher{}, nil)
	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var snap musor.HealthSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.False(t, snap.Initialized)
}

func TestOptions_CORSPreflight(t *testing.T) {
	s := testServer(t, &fakeFetcher{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/catalog/movie/hu-live.json", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID_HeaderIsSet(t *testing.T) {
	s := testServer(t, &fakeFetcher{}, nil)
	rec := get(t, s, "/manifest.json")
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
