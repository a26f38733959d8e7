// Package sheets is the only boundary between the portal and its system of
// record: a spreadsheet-backed script endpoint that speaks JSON.
//
// Reads are GET <endpoint>?sheet=<name>&t=<cache-bust>. Everything else is a
// POST of {"action", "sheet", "data"} to the same endpoint.
package sheets

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pcp-logistica/tracking-portal/internal/api/metrics"
)

// Actions understood by the endpoint.
const (
	ActionSave        = "SAVE"
	ActionDelete      = "DELETE"
	ActionChatGet     = "CHAT_GET"
	ActionChatSave    = "CHAT_SAVE"
	ActionUpload      = "UPLOAD"
	ActionGroupCreate = "GROUP_CREATE"

	actionList = "LIST"
)

// Fixed sheet names.
const (
	SheetAWB    = "AWB"
	SheetPre    = "PRÉ"
	SheetUsers  = "CADASTRO USUÁRIO"
	SheetChat   = "CHAT"
	SheetGroups = "ESPACO"
)

const (
	defaultRetries   = 3
	defaultBackoff   = time.Second
	defaultViewerURL = "https://lh3.googleusercontent.com/d/"
)

var (
	// ErrUnavailable is returned when every attempt of a write failed at the
	// transport level.
	ErrUnavailable = errors.New("remote store unavailable")
	// ErrUnexpectedResponse is returned when a 2xx body cannot be used.
	ErrUnexpectedResponse = errors.New("unexpected remote store response")
)

// StatusError reports a non-2xx answer. It is final: the request is not retried.
type StatusError struct {
	Action string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote store %s: unexpected status %d", e.Action, e.Code)
}

// Row is one raw sheet row keyed by column label.
type Row map[string]any

// Config captures the settings of the endpoint.
type Config struct {
	Endpoint   string
	Retries    int
	Backoff    time.Duration
	ViewerURL  string
	HTTPClient *http.Client
}

// Client issues requests against the endpoint.
type Client struct {
	endpoint  string
	http      *http.Client
	retries   int
	backoff   time.Duration
	viewerURL string
	log       zerolog.Logger
	now       func() time.Time
}

type request struct {
	Action string `json:"action"`
	Sheet  string `json:"sheet,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// NewClient returns a Client. Zero values in cfg fall back to 3 attempts, a
// one second backoff and the default file viewer URL.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	c := &Client{
		endpoint:  cfg.Endpoint,
		http:      cfg.HTTPClient,
		retries:   cfg.Retries,
		backoff:   cfg.Backoff,
		viewerURL: cfg.ViewerURL,
		log:       log,
		now:       time.Now,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.retries <= 0 {
		c.retries = defaultRetries
	}
	if c.backoff <= 0 {
		c.backoff = defaultBackoff
	}
	if c.viewerURL == "" {
		c.viewerURL = defaultViewerURL
	}
	return c
}

// ListRows returns every row of sheet. Reads are not retried and failures are
// swallowed: the caller gets an empty slice and cannot tell "no data" from
// "fetch failed".
func (c *Client) ListRows(ctx context.Context, sheet string) []Row {
	rows, err := c.fetchRows(ctx, sheet)
	if err != nil {
		c.log.Warn().Err(err).Str("sheet", sheet).Msg("list rows failed, returning empty result")
		return []Row{}
	}
	return rows
}

// Rows returns every row of sheet or the read error. A transport failure is
// reported as ErrUnavailable, a non-2xx answer as *StatusError.
func (c *Client) Rows(ctx context.Context, sheet string) ([]Row, error) {
	rows, err := c.fetchRows(ctx, sheet)
	if err == nil {
		return rows, nil
	}
	var se *StatusError
	if errors.As(err, &se) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// Ping performs one read to check the endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.fetchRows(ctx, SheetGroups)
	return err
}

func (c *Client) fetchRows(ctx context.Context, sheet string) (rows []Row, err error) {
	start := time.Now()
	defer func() { observe(actionList, start, err) }()

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("sheet", sheet)
	q.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", sheet, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Action: actionList, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("list %s: read body: %w", sheet, err)
	}
	return decodeRows(body)
}

// Post sends one action. Transport failures are retried up to the configured
// number of attempts with a fixed backoff; a non-2xx answer ends the call with
// a *StatusError. The body of a 2xx answer is returned as-is (it may be empty).
//
// Writes carry no idempotency key. If the first attempt reached the store but
// its response was lost, the retry is sent again and a store that treats SAVE
// as a plain insert would end up with a duplicate row.
func (c *Client) Post(ctx context.Context, action, sheet string, data any) (raw json.RawMessage, err error) {
	start := time.Now()
	defer func() { observe(action, start, err) }()

	body, err := json.Marshal(request{Action: action, Sheet: sheet, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", action, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		raw, err := c.send(ctx, action, body)
		if err == nil {
			return raw, nil
		}
		var se *StatusError
		if errors.As(err, &se) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", action, ctxErr)
		}

		lastErr = err
		if attempt == c.retries {
			break
		}
		c.log.Debug().Err(err).Str("action", action).Int("attempt", attempt).Msg("remote store request failed, retrying")
		metrics.StoreRetriesTotal.WithLabelValues(action).Inc()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", action, ctx.Err())
		case <-time.After(c.backoff):
		}
	}
	return nil, fmt.Errorf("%w: %s failed after %d attempts: %v", ErrUnavailable, action, c.retries, lastErr)
}

func (c *Client) send(ctx context.Context, action string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	// The script endpoint only accepts simple requests.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Action: action, Code: resp.StatusCode}
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimSpace(payload)), nil
}

// Save upserts data into sheet. The presence of an ID in data decides insert
// vs update on the remote side.
func (c *Client) Save(ctx context.Context, sheet string, data Row) error {
	_, err := c.Post(ctx, ActionSave, sheet, data)
	return err
}

// Delete removes the row with id from sheet.
func (c *Client) Delete(ctx context.Context, sheet, id string) error {
	_, err := c.Post(ctx, ActionDelete, sheet, map[string]string{"id": id})
	return err
}

// ChatRows returns the messages of a channel sheet, or an empty slice when the
// request fails or the answer is not a list.
func (c *Client) ChatRows(ctx context.Context, sheet string) []Row {
	raw, err := c.Post(ctx, ActionChatGet, sheet, nil)
	if err != nil {
		c.log.Warn().Err(err).Str("sheet", sheet).Msg("chat fetch failed, returning empty result")
		return []Row{}
	}
	rows, err := decodeRows(raw)
	if err != nil {
		c.log.Warn().Err(err).Str("sheet", sheet).Msg("chat payload is not a list")
		return []Row{}
	}
	return rows
}

// ChatSave appends one message row to a channel sheet.
func (c *Client) ChatSave(ctx context.Context, sheet string, data Row) error {
	_, err := c.Post(ctx, ActionChatSave, sheet, data)
	return err
}

// GroupCreate registers a new group channel.
func (c *Client) GroupCreate(ctx context.Context, data Row) error {
	_, err := c.Post(ctx, ActionGroupCreate, "", data)
	return err
}

type uploadData struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Base64   string `json:"base64"`
}

type uploadResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Upload base64-encodes content and stores it remotely. The returned link is
// the viewer URL for the returned file id, or the returned url when no id came
// back.
func (c *Client) Upload(ctx context.Context, fileName, mimeType string, content []byte) (string, error) {
	raw, err := c.Post(ctx, ActionUpload, "", uploadData{
		FileName: fileName,
		MimeType: mimeType,
		Base64:   base64.StdEncoding.EncodeToString(content),
	})
	if err != nil {
		return "", err
	}

	var res uploadResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", fmt.Errorf("%w: upload: %v", ErrUnexpectedResponse, err)
	}
	switch {
	case res.ID != "":
		return strings.TrimRight(c.viewerURL, "/") + "/" + res.ID, nil
	case res.URL != "":
		return res.URL, nil
	}
	return "", fmt.Errorf("%w: upload returned neither id nor url", ErrUnexpectedResponse)
}

// decodeRows keeps the object elements of a JSON array. Anything that is not
// an array decodes to an empty slice.
func decodeRows(body []byte) ([]Row, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []Row{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	list, ok := v.([]any)
	if !ok {
		return []Row{}, nil
	}
	rows := make([]Row, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			rows = append(rows, Row(m))
		}
	}
	return rows, nil
}

func observe(action string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.StoreRequestsTotal.WithLabelValues(action, outcome).Inc()
	metrics.StoreRequestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}
