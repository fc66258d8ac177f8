// Package tube retrieves YouTube caption tracks straight from the watch
// page, without an API key. It is the first extraction strategy tried by
// the resolver.
package tube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tubetext/tubetext/internal/subtitles"
	"golang.org/x/time/rate"
)

// Name is the strategy name reported in responses.
const Name = "captions"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client fetches caption tracks for single videos. The zero value is not
// usable; construct with NewClient.
type Client struct {
	HTTP    *http.Client
	Limiter *rate.Limiter
	// Cookie is an optional pre-built Cookie header value, see LoadCookieHeader.
	Cookie string
	// BaseURL is the YouTube origin, overridable in tests.
	BaseURL string
}

func NewClient(httpClient *http.Client, limiter *rate.Limiter, cookie string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Client{
		HTTP:    httpClient,
		Limiter: limiter,
		Cookie:  cookie,
		BaseURL: "https://www.youtube.com",
	}
}

var (
	ErrNotOk           = errors.New("unexpected non 200 status code")
	ErrTooManyRequests = errors.New("too many requests")
	ErrNoCaptions      = errors.New("no caption tracks")
	ErrUnavailable     = errors.New("video unavailable")
)

// ResCaptionsList is the "captions" object embedded in the watch page.
type ResCaptionsList struct {
	PlayerCaptionsTracklistRenderer struct {
		CaptionTracks []ResTrack
	}
}

type ResTrack struct {
	BaseUrl string
	Name    struct {
		SimpleText string
	}
	LanguageCode   string
	Kind           string
	IsTranslatable bool
}

// Transcript is the timedtext XML document behind a caption track.
type Transcript struct {
	Entries []struct {
		Text  string  `xml:",chardata"`
		Start float64 `xml:"start,attr"`
		Dur   float32 `xml:"dur,attr"`
	} `xml:"text"`
}

type TranscriptType int

const (
	TypeNone TranscriptType = iota
	TypeAuto
	TypeManual
)

// Name implements the resolver Strategy interface.
func (c *Client) Name() string { return Name }

// Attempt fetches the best caption track for videoID and joins its
// entries into raw text. Markup inside entries is stripped here; prose
// normalization is the resolver's job.
func (c *Client) Attempt(ctx context.Context, videoID string) (string, error) {
	transcript, _, err := c.Captions(ctx, videoID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, entry := range transcript.Entries {
		text := subtitles.StripMarkup(entry.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}

// Captions scrapes the watch page for the caption track list, picks the
// best track and downloads its timedtext XML.
func (c *Client) Captions(ctx context.Context, videoID string) (*Transcript, TranscriptType, error) {
	content, err := c.get(ctx, c.BaseURL+"/watch?v="+videoID)
	if err != nil {
		return nil, 0, fmt.Errorf("requesting watch page: %w", err)
	}
	sContent := string(content)

	if strings.Contains(sContent, `action="https://consent.youtube.com/s"`) {
		return nil, 0, fmt.Errorf("got consent form for video %q: %w", videoID, ErrUnavailable)
	}

	split := strings.Split(sContent, `"captions":`)
	if len(split) <= 1 {
		if strings.Contains(sContent, `class="g-recaptcha"`) {
			return nil, 0, fmt.Errorf("video %q got captcha: %w", videoID, ErrTooManyRequests)
		}

		if strings.Contains(sContent, `"playabilityStatus"`) &&
			strings.Contains(sContent, `"ERROR"`) {
			return nil, 0, fmt.Errorf("video %q not playable: %w", videoID, ErrUnavailable)
		}

		return nil, 0, fmt.Errorf("no captions json for video %q: %w", videoID, ErrNoCaptions)
	}

	rawCaptions := strings.ReplaceAll(strings.Split(split[1], `,"videoDetails`)[0], "\n", "")
	captionsList := ResCaptionsList{}
	if err := json.Unmarshal([]byte(rawCaptions), &captionsList); err != nil {
		return nil, 0, fmt.Errorf("could not unmarshal caption results: %w", err)
	}

	track, trackType := bestTrack(captionsList.PlayerCaptionsTracklistRenderer.CaptionTracks)
	if trackType == TypeNone {
		return nil, 0, ErrNoCaptions
	}

	body, err := c.get(ctx, track.BaseUrl)
	if err != nil {
		return nil, 0, fmt.Errorf("captions request: %w", err)
	}

	transcript := Transcript{}
	if err := xml.Unmarshal(body, &transcript); err != nil {
		return nil, 0, fmt.Errorf("could not parse transcript xml: %w", err)
	}

	return &transcript, trackType, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if c.Cookie != "" {
		req.Header.Set("Cookie", c.Cookie)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		if res.StatusCode == http.StatusTooManyRequests {
			return nil, ErrTooManyRequests
		}

		return nil, fmt.Errorf("got code %d: %w", res.StatusCode, ErrNotOk)
	}

	return body, nil
}

// Returns the "best" track, which is an english track non automatic.
// Then goes for english automatic,
// Then for non-english non-automatic,
// Then for non-english automatic.
func bestTrack(tracks []ResTrack) (*ResTrack, TranscriptType) {
	for _, t := range tracks {
		if t.LanguageCode == "en" && t.Kind != "asr" {
			return &t, TypeManual
		}
	}

	for _, t := range tracks {
		if t.LanguageCode == "en" {
			return &t, TypeAuto
		}
	}

	for _, t := range tracks {
		if t.Kind != "asr" {
			return &t, TypeManual
		}
	}

	if len(tracks) > 0 {
		return &tracks[0], TypeAuto
	}

	return nil, TypeNone
}
