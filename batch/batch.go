// Package batch runs many downloads and folds their results into one report.
//
// Entries run sequentially by default. [WithConcurrency] spreads them over a
// bounded pool of workers; results keep the input order either way, and one
// failed entry never stops the rest.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adamwoolhether/imagedl/download"
	"github.com/adamwoolhether/imagedl/errs"
)

// Result aggregates the outcome of a batch. Total always equals
// Succeeded+Failed and len(Results); Results[i] belongs to input i.
type Result struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []download.Result `json:"results"`
}

// AllSuccessful reports whether every entry succeeded.
func (r Result) AllSuccessful() bool {
	return r.Failed == 0
}

// Manager runs batches over one Downloader.
type Manager struct {
	d           *download.Downloader
	concurrency int
	logger      *slog.Logger
}

// New builds a Manager over d.
func New(d *download.Downloader, optFns ...Option) (*Manager, error) {
	if d == nil {
		return nil, errors.New("downloader must not be nil")
	}

	opts := options{concurrency: 1}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying batch option: %w", err)
		}
	}

	m := &Manager{
		d:           d,
		concurrency: opts.concurrency,
		logger:      opts.logger,
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	return m, nil
}

// entry is one unit of batch work.
type entry struct {
	url  string
	dest string
	run  func(ctx context.Context) download.Result
}

// DownloadAll downloads every url into dir, naming each file after its URL.
func (m *Manager) DownloadAll(ctx context.Context, urls []string, dir string, opts ...download.CallOption) Result {
	entries := make([]entry, len(urls))
	for i, u := range urls {
		entries[i] = entry{
			url:  u,
			dest: dir,
			run: func(ctx context.Context) download.Result {
				return m.d.Download(ctx, u, dir, opts...)
			},
		}
	}

	return m.runAll(ctx, entries)
}

// DownloadProviders runs the download each provider describes. The
// provider's overwrite and size policies apply on top of opts.
func (m *Manager) DownloadProviders(ctx context.Context, providers []download.Provider, opts ...download.CallOption) Result {
	entries := make([]entry, len(providers))
	for i, p := range providers {
		entries[i] = entry{
			url:  p.URL(),
			dest: p.Destination(),
			run: func(ctx context.Context) download.Result {
				return m.d.DownloadProvider(ctx, p, opts...)
			},
		}
	}

	return m.runAll(ctx, entries)
}

func (m *Manager) runAll(ctx context.Context, entries []entry) Result {
	start := time.Now()

	var results []download.Result
	if m.concurrency <= 1 || len(entries) <= 1 {
		results = make([]download.Result, len(entries))
		for i, e := range entries {
			results[i] = e.run(ctx)
		}
	} else {
		q := newQueue(len(entries), m.concurrency)
		for i, e := range entries {
			q.start(ctx, i, e.run, func(err error) download.Result {
				return aborted(e, err)
			})
		}
		results = q.wait()
	}

	res := fold(results)
	m.logger.Info("batch complete",
		"total", res.Total,
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"concurrency", m.concurrency,
		"elapsed", time.Since(start),
	)

	return res
}

// aborted is the result of an entry whose context ended before it started.
func aborted(e entry, cause error) download.Result {
	err := errs.NewTransport(e.url, cause)
	return download.Result{
		Destination: e.dest,
		Error:       err.Error(),
		Kind:        err.Kind,
		Metadata:    download.Metadata{URL: e.url, DownloadTime: time.Now().Format(download.TimeLayout)},
	}
}

func fold(results []download.Result) Result {
	res := Result{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Success {
			res.Succeeded++
			continue
		}
		res.Failed++
	}
	return res
}
