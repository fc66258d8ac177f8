package tube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptionsServer(t *testing.T, watchBody func(baseURL string) string) *httptest.Server {
	t.Helper()

	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			fmt.Fprint(w, watchBody(ts.URL))
		case "/timedtext":
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?><transcript>`+
				`<text start="0" dur="1.5">hello there</text>`+
				`<text start="1.5" dur="2">general kenobi</text>`+
				`</transcript>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	return ts
}

func watchPageWithTracks(baseURL string) string {
	captions := fmt.Sprintf(
		`{"playerCaptionsTracklistRenderer":{"captionTracks":[`+
			`{"baseUrl":"%s/timedtext","languageCode":"en","kind":"asr"}`+
			`]}}`,
		baseURL,
	)
	return `<html><script>var ytInitialPlayerResponse = {"captions":` + captions + `,"videoDetails":{"videoId":"x"}};</script></html>`
}

func TestAttempt(t *testing.T) {
	ts := newCaptionsServer(t, watchPageWithTracks)

	c := NewClient(ts.Client(), nil, "")
	c.BaseURL = ts.URL

	text, err := c.Attempt(context.Background(), "bFxWRkWAFzs")
	require.NoError(t, err)
	assert.Equal(t, "hello there general kenobi", text)
}

func TestCaptionsNoTracks(t *testing.T) {
	ts := newCaptionsServer(t, func(string) string {
		return `<html><body>nothing interesting here</body></html>`
	})

	c := NewClient(ts.Client(), nil, "")
	c.BaseURL = ts.URL

	_, _, err := c.Captions(context.Background(), "bFxWRkWAFzs")
	assert.ErrorIs(t, err, ErrNoCaptions)
}

func TestCaptionsCaptcha(t *testing.T) {
	ts := newCaptionsServer(t, func(string) string {
		return `<html><div class="g-recaptcha"></div></html>`
	})

	c := NewClient(ts.Client(), nil, "")
	c.BaseURL = ts.URL

	_, _, err := c.Captions(context.Background(), "bFxWRkWAFzs")
	assert.ErrorIs(t, err, ErrTooManyRequests)
}

func TestCaptionsRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.Client(), nil, "")
	c.BaseURL = ts.URL

	_, _, err := c.Captions(context.Background(), "bFxWRkWAFzs")
	assert.ErrorIs(t, err, ErrTooManyRequests)
}

func TestCaptionsSendsCookieHeader(t *testing.T) {
	var gotCookie string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		fmt.Fprint(w, "<html></html>")
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.Client(), nil, "SID=abc; HSID=def")
	c.BaseURL = ts.URL

	_, _, _ = c.Captions(context.Background(), "bFxWRkWAFzs")
	assert.Equal(t, "SID=abc; HSID=def", gotCookie)
}

func TestBestTrack(t *testing.T) {
	manualEN := ResTrack{LanguageCode: "en", Kind: ""}
	autoEN := ResTrack{LanguageCode: "en", Kind: "asr"}
	manualNL := ResTrack{LanguageCode: "nl", Kind: ""}
	autoNL := ResTrack{LanguageCode: "nl", Kind: "asr"}

	tests := []struct {
		name     string
		tracks   []ResTrack
		want     *ResTrack
		wantType TranscriptType
	}{
		{name: "prefers manual english", tracks: []ResTrack{autoNL, autoEN, manualEN}, want: &manualEN, wantType: TypeManual},
		{name: "auto english over manual other", tracks: []ResTrack{manualNL, autoEN}, want: &autoEN, wantType: TypeAuto},
		{name: "manual other over auto other", tracks: []ResTrack{autoNL, manualNL}, want: &manualNL, wantType: TypeManual},
		{name: "any track as last resort", tracks: []ResTrack{autoNL}, want: &autoNL, wantType: TypeAuto},
		{name: "none", tracks: nil, want: nil, wantType: TypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, typ := bestTrack(tt.tracks)
			assert.Equal(t, tt.wantType, typ)
			if tt.want != nil {
				require.NotNil(t, track)
				assert.Equal(t, *tt.want, *track)
			}
		})
	}
}
