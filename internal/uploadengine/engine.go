package uploadengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrInvalidConcurrency = errors.New("concurrency limit must be at least 1")

// UploadResult pairs one discovered file with the outcome of its single
// upload attempt. Err is set only when Status is StatusFailed.
type UploadResult struct {
	Media  Media
	Status UploadStatus
	Err    error
}

// Engine drives uploads over a set of discovered files with a fixed bound on
// how many are in flight at once.
type Engine struct {
	Client *Client
	// Exif, when set, supplies capture dates for fileCreatedAt.
	Exif *Exiftool

	now    func() time.Time
	upload func(ctx context.Context, m Media) UploadResult
}

func NewEngine(client *Client) *Engine {
	e := &Engine{Client: client, now: time.Now}
	e.upload = e.uploadOne
	return e
}

// uploadOne derives the file's identity and performs its one network
// transfer. Every error becomes a failed result; nothing here can abort the
// batch.
func (e *Engine) uploadOne(ctx context.Context, m Media) UploadResult {
	identity, err := m.Identity(e.now, e.Exif)
	if err != nil {
		return UploadResult{Media: m, Status: StatusFailed, Err: err}
	}
	status, err := e.Client.Upload(ctx, m, identity)
	return UploadResult{Media: m, Status: status, Err: err}
}

// Run fans the files out to at most limit concurrent uploads and returns the
// stream of results. Completion order is whatever the network gives us. The
// channel is closed once every file has produced exactly one result.
func (e *Engine) Run(ctx context.Context, files []Media, limit int) (<-chan UploadResult, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidConcurrency, limit)
	}

	results := make(chan UploadResult)
	go func() {
		defer close(results)
		g := new(errgroup.Group)
		g.SetLimit(limit)
		for _, m := range files {
			m := m
			g.Go(func() error {
				results <- e.upload(ctx, m)
				return nil
			})
		}
		g.Wait()
	}()
	return results, nil
}

// UploadAll runs the whole batch and feeds every result to the progress
// reporter. Per-file failures are counted and logged by the reporter; only a
// degenerate concurrency limit is an error here.
func (e *Engine) UploadAll(ctx context.Context, files []Media, limit int, progress *Progress) error {
	results, err := e.Run(ctx, files, limit)
	if err != nil {
		return err
	}
	for r := range results {
		progress.Observe(r)
	}
	progress.Finish()
	return nil
}
