package cms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEndpointURL(t *testing.T) {
	t.Parallel()

	e := Endpoint{ProjectID: "c42v017z", Dataset: "production", APIVersion: "2021-10-21"}
	require.Equal(t, "https://c42v017z.api.sanity.io/v2021-10-21/data/query/production", e.URL())

	e.APIVersion = "v2023-05-03"
	e.APIHost = "apicdn.sanity.io"
	require.Equal(t, "https://c42v017z.apicdn.sanity.io/v2023-05-03/data/query/production", e.URL())
}

func TestClientFetchDecodesResult(t *testing.T) {
	t.Parallel()

	var gotQuery, gotSlug, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotSlug = r.URL.Query().Get("$slug")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ms":3,"result":{"title":"Atlas","date":"2024-03-09"}}`))
	}))
	defer srv.Close()

	c := NewClient(Endpoint{}, WithBaseURL(srv.URL), WithToken("tok"))
	var detail *ProjectDetail
	err := c.Fetch(context.Background(), ProjectDetailQuery("atlas"), &detail)
	require.NoError(t, err)
	require.NotNil(t, detail)
	require.Equal(t, "Atlas", detail.Title)
	require.Equal(t, `"atlas"`, gotSlug, "slug must travel as a JSON encoded parameter")
	require.Contains(t, gotQuery, "slug.current == $slug")
	require.Equal(t, "Bearer tok", gotAuth)
}

func TestClientFetchNullResultLeavesDestination(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":null}`))
	}))
	defer srv.Close()

	c := NewClient(Endpoint{}, WithBaseURL(srv.URL))
	var settings *SiteSettings
	require.NoError(t, c.Fetch(context.Background(), SiteSettingsQuery, &settings))
	require.Nil(t, settings)
}

func TestClientFetchErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		wantIs error
		wantSt int
	}{
		{name: "status", status: http.StatusBadRequest, body: `{"error":{"description":"bad query"}}`, wantSt: http.StatusBadRequest},
		{name: "not json", status: http.StatusOK, body: `<html>gateway</html>`},
		{name: "no result", status: http.StatusOK, body: `{"query":"*"}`, wantIs: ErrMalformedEnvelope, wantSt: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(Endpoint{}, WithBaseURL(srv.URL))
			var out []Client
			err := c.Fetch(context.Background(), ClientsQuery, &out)
			require.Error(t, err)

			var qerr *QueryError
			require.True(t, errors.As(err, &qerr))
			require.Equal(t, TypeClient, qerr.ContentType)
			if tc.wantSt != 0 {
				require.Equal(t, tc.wantSt, qerr.Status)
			}
			if tc.wantIs != nil {
				require.ErrorIs(t, err, tc.wantIs)
			}
		})
	}
}

func TestClientFetchTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Endpoint{}, WithBaseURL(url), WithTimeout(time.Second))
	var out *Contact
	err := c.Fetch(context.Background(), ContactQuery, &out)
	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	require.Zero(t, qerr.Status)
}

func TestFetchAllRunsConcurrentlyAndFailsFast(t *testing.T) {
	t.Parallel()

	var inflight, peak int32
	release := make(chan struct{})
	f := FetcherFunc(func(ctx context.Context, q Query, out any) error {
		n := atomic.AddInt32(&inflight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		defer atomic.AddInt32(&inflight, -1)
		if q.ContentType == TypeClient {
			<-release
			return errors.New("boom")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})

	go func() {
		for atomic.LoadInt32(&inflight) < 2 {
			time.Sleep(time.Millisecond)
		}
		close(release)
	}()

	var settings *SiteSettings
	var clients []Client
	start := time.Now()
	err := FetchAll(context.Background(), f, Bind(SiteSettingsQuery, &settings), Bind(ClientsQuery, &clients))
	require.EqualError(t, err, "boom")
	require.EqualValues(t, 2, atomic.LoadInt32(&peak), "fetches must be in flight together")
	require.Less(t, time.Since(start), 4*time.Second, "sibling fetch must be cancelled")
}

func TestDecodeResultScalarFields(t *testing.T) {
	t.Parallel()

	var years []FeaturedYear
	err := DecodeResult(strings.NewReader(`{"result":[{"year":2023,"projects":[]},{"year":"2022"}]}`), &years)
	require.NoError(t, err)
	require.Len(t, years, 2)
	require.Equal(t, "2023", years[0].Year.String())
	n, ok := years[1].Year.Int()
	require.True(t, ok)
	require.Equal(t, 2022, n)
}

func TestClientFetchDecodesClientLogos(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":[{"name":"Acme","url":"https://acme.test","logo":{"asset":{"_ref":"image-acme-200x85-png"}}},{"name":"Globex"}]}`))
	}))
	defer srv.Close()

	var logos []ClientLogo
	client := NewClient(Endpoint{ProjectID: "p", Dataset: "d"}, WithBaseURL(srv.URL))
	require.NoError(t, client.Fetch(context.Background(), ClientsQuery, &logos))
	require.Len(t, logos, 2)
	require.Equal(t, "Acme", logos[0].Name)
	require.Equal(t, "image-acme-200x85-png", logos[0].Logo.Asset.Ref)
	require.Nil(t, logos[1].Logo)
}
