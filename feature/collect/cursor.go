package collect

import (
	"context"

	"go.uber.org/zap"
)

// StopReason explains why a cursor stopped fetching.
type StopReason string

const (
	// StopNone means the cursor can still fetch.
	StopNone StopReason = ""
	// StopLastPage means the remote ran out of records.
	StopLastPage StopReason = "last_page"
	// StopCapReached means the entity cap was hit; more records may remain remotely.
	StopCapReached StopReason = "cap_reached"
	// StopRemoteError means a page fetch failed.
	StopRemoteError StopReason = "remote_error"
	// StopAborted means the context ended between pages.
	StopAborted StopReason = "aborted"
)

// Stats summarizes what a cursor fetched so far.
type Stats struct {
	Pages    int `json:"pages"`
	Records  int `json:"records"`
	Total    int `json:"total"`
	PageSize int `json:"page_size"`
	Cap      int `json:"cap"`
}

// Cursor is a lazy, finite, non-restartable sequence of record pages.
// It is not safe for concurrent use.
type Cursor struct {
	remote   Remote
	source   string
	entity   string
	filter   map[string]string
	pageSize int
	limit    int
	logger   *zap.Logger

	pages     int
	collected int
	total     int
	reason    StopReason
	err       error
}

// NextPage fetches the next page. It returns false once the cursor has stopped;
// Reason and Err then tell why.
func (c *Cursor) NextPage(ctx context.Context) ([]Record, bool) {
	if c.reason != StopNone {
		return nil, false
	}

	remaining := c.limit - c.collected
	if remaining <= 0 {
		c.stop(StopCapReached, nil)
		return nil, false
	}

	if err := ctx.Err(); err != nil {
		c.stop(StopAborted, err)
		return nil, false
	}

	size := c.pageSize
	if remaining < size {
		size = remaining
	}

	page, err := c.remote.FetchPage(ctx, c.entity, PageRequest{
		Number: c.pages,
		Size:   size,
		Offset: c.collected,
		Filter: c.filter,
	})
	if err != nil {
		c.stop(StopRemoteError, &RemoteError{Source: c.source, Entity: c.entity, Page: c.pages, Err: err})
		return nil, false
	}

	records := page.Records
	if len(records) > size {
		records = records[:size]
	}

	c.pages++
	c.collected += len(records)
	if page.Total > 0 {
		c.total = page.Total
	}

	switch {
	case len(records) < size:
		c.stop(StopLastPage, nil)
	case c.total > 0 && c.collected >= c.total:
		c.stop(StopLastPage, nil)
	case c.collected >= c.limit:
		c.stop(StopCapReached, nil)
	}

	if len(records) == 0 {
		return nil, false
	}
	return records, true
}

func (c *Cursor) stop(reason StopReason, err error) {
	c.reason = reason
	c.err = err

	fields := []zap.Field{
		zap.String("reason", string(reason)),
		zap.Int("pages", c.pages),
		zap.Int("records", c.collected),
	}
	if err != nil {
		c.logger.Warn("Collection stopped", append(fields, zap.Error(err))...)
		return
	}
	c.logger.Debug("Collection stopped", fields...)
}

// Err returns the error that stopped the cursor, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Reason returns why the cursor stopped, or StopNone while it can still fetch.
func (c *Cursor) Reason() StopReason {
	return c.reason
}

// Done reports whether the cursor has stopped.
func (c *Cursor) Done() bool {
	return c.reason != StopNone
}

// PageSize returns the effective page size.
func (c *Cursor) PageSize() int {
	return c.pageSize
}

// Cap returns the number of records the cursor will collect at most.
func (c *Cursor) Cap() int {
	return c.limit
}

// PlannedPages returns the number of page requests needed to reach the cap,
// counted with the effective page size.
func (c *Cursor) PlannedPages() int {
	return (c.limit + c.pageSize - 1) / c.pageSize
}

// Stats returns the running totals.
func (c *Cursor) Stats() Stats {
	return Stats{
		Pages:    c.pages,
		Records:  c.collected,
		Total:    c.total,
		PageSize: c.pageSize,
		Cap:      c.limit,
	}
}
