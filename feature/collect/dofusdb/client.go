package dofusdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"krosmoz-scrapper/core/utils"
	"krosmoz-scrapper/feature/collect"

	"github.com/avast/retry-go/v4"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// SourceName is the alias source served by this client.
const SourceName = "dofusdb"

// ErrUnknownEntity indicates the entity has no DofusDB resource.
var ErrUnknownEntity = errors.New("entity not served by dofusdb")

// ErrMalformedResponse indicates a body that is not a DofusDB page.
var ErrMalformedResponse = errors.New("malformed dofusdb response")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dofusdb returned status %d for %s", e.Code, e.URL)
}

// resources maps internal entity keys to API resources.
var resources = map[string]string{
	"monster":    "monsters",
	"spell":      "spells",
	"class":      "breeds",
	"item":       "items",
	"resource":   "items",
	"consumable": "items",
	"equipment":  "items",
	"panoply":    "item-sets",
}

// Client fetches pages from the DofusDB API.
type Client struct {
	baseURL  string
	lang     string
	http     *http.Client
	attempts uint
	delay    time.Duration
	logger   *zap.Logger
}

var _ collect.Remote = (*Client)(nil)

// New creates a DofusDB client from cfg.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		lang:     cfg.Lang,
		http:     &http.Client{Timeout: time.Duration(timeout) * time.Second},
		attempts: uint(retries) + 1,
		delay:    time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		logger:   logger,
	}
}

// Resource returns the API resource serving entity.
func Resource(entity string) (string, bool) {
	r, ok := resources[utils.NormalizeKey(entity)]
	return r, ok
}

// PageURL builds the request URL for one page.
func (c *Client) PageURL(entity string, req collect.PageRequest) (string, error) {
	resource, ok := Resource(entity)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}

	q := url.Values{}
	q.Set("$limit", strconv.Itoa(req.Size))
	q.Set("$skip", strconv.Itoa(req.Offset))
	if c.lang != "" {
		q.Set("lang", c.lang)
	}
	for k, v := range req.Filter {
		q.Set(k, v)
	}

	return c.baseURL + "/" + resource + "?" + q.Encode(), nil
}

// FetchPage implements collect.Remote.
func (c *Client) FetchPage(ctx context.Context, entity string, req collect.PageRequest) (*collect.Page, error) {
	u, err := c.PageURL(entity, req)
	if err != nil {
		return nil, err
	}

	var page *collect.Page
	err = retry.Do(
		func() error {
			var fetchErr error
			page, fetchErr = c.fetch(ctx, u)
			return fetchErr
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("Retrying dofusdb page",
				zap.String("url", u), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) fetch(ctx context.Context, u string) (*collect.Page, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		statusErr := &StatusError{Code: res.StatusCode, URL: u}
		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			return nil, statusErr
		}
		return nil, retry.Unrecoverable(statusErr)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	page, err := ParsePage(body)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	return page, nil
}

// ParsePage decodes a paginated {"total", "data"} body, or a bare array.
func ParsePage(body []byte) (*collect.Page, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}

	root := gjson.ParseBytes(body)
	data := root
	if root.IsObject() {
		data = root.Get("data")
	}
	if !data.IsArray() {
		return nil, ErrMalformedResponse
	}

	items := data.Array()
	page := &collect.Page{
		Records: make([]collect.Record, 0, len(items)),
		Total:   int(root.Get("total").Int()),
	}
	for _, item := range items {
		page.Records = append(page.Records, collect.Record(item.Raw))
	}
	return page, nil
}
