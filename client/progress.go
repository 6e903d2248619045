package client

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// progressInterval is the minimum gap between two progress lines.
const progressInterval = time.Second

// progressWriter is an io.Writer that logs transfer progress of a
// response body at most once per progressInterval.
type progressWriter struct {
	w           io.Writer
	logger      *slog.Logger
	url         string
	transferred int64
	total       int64
	start       time.Time
	lastLog     time.Time
}

func newProgressWriter(w io.Writer, logger *slog.Logger, url string, total int64) *progressWriter {
	now := time.Now()
	return &progressWriter{w: w, logger: logger, url: url, total: total, start: now, lastLog: now}
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.transferred += int64(n)

	if time.Since(pw.lastLog) >= progressInterval {
		pw.lastLog = time.Now()
		pw.log("fetching")
	}

	return n, err
}

// done logs the final line once the body is fully read.
func (pw *progressWriter) done() {
	pw.log("fetch complete")
}

func (pw *progressWriter) log(msg string) {
	elapsed := time.Since(pw.start)
	attrs := []any{
		"url", pw.url,
		"elapsed", elapsed.Round(time.Millisecond),
		"transferred", pw.transferred,
	}
	if pw.total > 0 {
		attrs = append(attrs,
			"total", pw.total,
			"progress", fmt.Sprintf("%.1f%%", float64(pw.transferred)/float64(pw.total)*100),
		)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		attrs = append(attrs, "mbps", fmt.Sprintf("%.2f", float64(pw.transferred)/secs/(1024*1024)))
	}
	pw.logger.Debug(msg, attrs...)
}
