package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/adamwoolhether/imagedl/download"
	"github.com/adamwoolhether/imagedl/errs"
	"github.com/adamwoolhether/imagedl/metrics"
)

func TestRecorder_Record(t *testing.T) {
	reg := prometheus.NewRegistry()

	rec, err := metrics.New("imagedl", reg)
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	rec.Record("client", download.Result{Success: true, Size: 2048}, 150*time.Millisecond)
	rec.Record("client", download.Result{Success: true, Size: 4096}, 50*time.Millisecond)
	rec.Record("client", download.Result{Kind: errs.NotFound}, 10*time.Millisecond)
	rec.Record("ranged", download.Result{Kind: errs.InvalidMimeType}, 10*time.Millisecond)

	exp := `
# HELP imagedl_downloads_total Finished downloads by transport and outcome.
# TYPE imagedl_downloads_total counter
imagedl_downloads_total{outcome="invalid_mime_type",transport="ranged"} 1
imagedl_downloads_total{outcome="not_found",transport="client"} 1
imagedl_downloads_total{outcome="success",transport="client"} 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(exp), "imagedl_downloads_total"); err != nil {
		t.Errorf("downloads_total mismatch: %v", err)
	}

	got, err := testutil.GatherAndCount(reg, "imagedl_download_duration_seconds")
	if err != nil || got != 2 {
		t.Errorf("exp duration series for 2 transports, got %d: %v", got, err)
	}

	got, err = testutil.GatherAndCount(reg, "imagedl_download_size_bytes")
	if err != nil || got != 1 {
		t.Errorf("exp size observed only for successful client downloads, got %d series: %v", got, err)
	}
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	if _, err := metrics.New("imagedl", reg); err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}
	if _, err := metrics.New("imagedl", reg); err == nil {
		t.Error("exp error registering the same collectors twice")
	}
	if _, err := metrics.New("imagedl", nil); err == nil {
		t.Error("exp error for nil registerer")
	}
}
