package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/adamwoolhether/imagedl"
	"github.com/adamwoolhether/imagedl/batch"
	"github.com/adamwoolhether/imagedl/download"
	"github.com/adamwoolhether/imagedl/internal/config"
	"github.com/adamwoolhether/imagedl/metrics"
	"github.com/adamwoolhether/imagedl/provider"
)

type cli struct {
	stdout io.Writer
	stderr io.Writer
}

// common holds the flags every subcommand accepts.
type common struct {
	configPath string
	envFile    string
	overwrite  bool
	transport  string
	maxSize    int64
}

func (c *cli) flagSet(name, usage string) (*flag.FlagSet, *common) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	var cm common
	fs.StringVar(&cm.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&cm.envFile, "env", ".env", "dotenv file, ignored when missing")
	fs.BoolVar(&cm.overwrite, "overwrite", false, "Replace existing files")
	fs.StringVar(&cm.transport, "transport", "", "Backend: client, native or ranged (default: detect)")
	fs.Int64Var(&cm.maxSize, "max-size", 0, "Maximum file size in bytes, 0 for unlimited")

	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: imagedl %s\n\nOptions:\n", usage)
		fs.PrintDefaults()
	}

	return fs, &cm
}

// env is the configuration a subcommand runs with.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	reg    *prometheus.Registry
	opts   []imagedl.Option
}

// setup loads configuration and lets explicitly set flags override it.
func (c *cli) setup(fs *flag.FlagSet, cm *common) (*env, error) {
	cfg, err := config.Load(cm.configPath, cm.envFile)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "overwrite":
			cfg.Overwrite = cm.overwrite
		case "transport":
			cfg.Transport = cm.transport
		case "max-size":
			cfg.MaxFileSize = cm.maxSize
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &env{
		cfg:    cfg,
		logger: cfg.Logger(c.stderr),
	}
	e.opts = cfg.Options(e.logger)

	if cfg.MetricsFile != "" {
		e.reg = prometheus.NewRegistry()
		rec, err := metrics.New("imagedl", e.reg)
		if err != nil {
			return nil, err
		}
		e.opts = append(e.opts, imagedl.WithMetrics(rec))
	}

	return e, nil
}

// finish writes collected metrics, if any were requested.
func (c *cli) finish(e *env) {
	if e.reg == nil {
		return
	}
	if err := prometheus.WriteToTextfile(e.cfg.MetricsFile, e.reg); err != nil {
		e.logger.Error("failed to write metrics", "path", e.cfg.MetricsFile, "error", err)
	}
}

func (c *cli) printJSON(v any) {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(c.stderr, "Error: encoding output: %v\n", err)
	}
}

func (c *cli) download(ctx context.Context, args []string) int {
	fs, cm := c.flagSet("download", "download [options] <url> <destination>")
	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(c.stderr, "Error: a url and a destination are required")
		fs.Usage()
		return ExitInvalidArgs
	}

	e, err := c.setup(fs, cm)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	defer c.finish(e)

	res := imagedl.Download(ctx, fs.Arg(0), fs.Arg(1), e.opts...)
	c.printJSON(res)

	if !res.Success {
		return ExitFailed
	}
	return ExitSuccess
}

func (c *cli) info(ctx context.Context, args []string) int {
	fs, cm := c.flagSet("info", "info [options] <url>")
	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "Error: a url is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	e, err := c.setup(fs, cm)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	probe := imagedl.GetFileInfo(ctx, fs.Arg(0), e.opts...)
	c.printJSON(probe)

	if !probe.Exists {
		return ExitUnreachable
	}
	return ExitSuccess
}

func (c *cli) check(ctx context.Context, args []string) int {
	fs, cm := c.flagSet("check", "check [options] <url>")
	image := fs.Bool("image", false, "Also require an image content type")
	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "Error: a url is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	e, err := c.setup(fs, cm)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	d, err := imagedl.NewDownloader(e.opts...)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	ok := d.IsAccessible(ctx, fs.Arg(0))
	if *image {
		ok = d.ValidateImageURL(ctx, fs.Arg(0))
	}

	if !ok {
		fmt.Fprintln(c.stdout, "unreachable")
		return ExitUnreachable
	}

	fmt.Fprintln(c.stdout, "ok")
	return ExitSuccess
}

func (c *cli) batch(ctx context.Context, args []string) int {
	fs, cm := c.flagSet("batch", "batch [options] -dir <directory> [-file urls.txt] [url...]")
	dir := fs.String("dir", "", "Destination directory (required)")
	file := fs.String("file", "", "File with one url per line; - reads stdin")
	concurrency := fs.Int("concurrency", 0, "Parallel downloads (default from config)")
	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if *dir == "" {
		fmt.Fprintln(c.stderr, "Error: -dir is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	urls := fs.Args()
	if *file != "" {
		listed, err := readURLs(*file)
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return ExitGeneralError
		}
		urls = append(urls, listed...)
	}
	if len(urls) == 0 {
		fmt.Fprintln(c.stderr, "Error: no urls given")
		return ExitInvalidArgs
	}

	e, err := c.setup(fs, cm)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	defer c.finish(e)

	opts := e.opts
	if *concurrency > 0 {
		opts = append(opts, imagedl.WithConcurrency(*concurrency))
	}

	return c.report(imagedl.DownloadAll(ctx, urls, *dir, opts...))
}

func (c *cli) random(ctx context.Context, args []string) int {
	fs, cm := c.flagSet("random", "random [options] -dir <directory>")
	dir := fs.String("dir", "", "Destination directory (required)")
	source := fs.String("provider", "picsum", "Image source: picsum, loremflickr or unsplash")
	count := fs.Int("n", 1, "Number of images")
	width := fs.Int("width", 640, "Image width")
	height := fs.Int("height", 480, "Image height")
	prefix := fs.String("prefix", "", "File name prefix")
	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if *dir == "" || *count < 1 {
		fmt.Fprintln(c.stderr, "Error: -dir is required and -n must be at least 1")
		fs.Usage()
		return ExitInvalidArgs
	}

	var newProvider func(dir string, opts ...provider.Option) provider.Provider
	switch *source {
	case "picsum":
		newProvider = provider.Picsum
	case "loremflickr":
		newProvider = provider.LoremFlickr
	case "unsplash":
		newProvider = provider.Unsplash
	default:
		fmt.Fprintf(c.stderr, "Error: unknown provider %q\n", *source)
		return ExitInvalidArgs
	}

	e, err := c.setup(fs, cm)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	defer c.finish(e)

	maxSize := provider.DefaultMaxFileSize
	if e.cfg.MaxFileSize > 0 {
		maxSize = e.cfg.MaxFileSize
	}
	pOpts := []provider.Option{
		provider.WithSize(*width, *height),
		provider.WithOverwrite(e.cfg.Overwrite),
		provider.WithMaxFileSize(maxSize),
		provider.WithPrefix(*prefix),
	}

	providers := make([]download.Provider, *count)
	for i := range providers {
		providers[i] = newProvider(*dir, pOpts...)
	}

	m, err := imagedl.NewManager(e.opts...)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	return c.report(m.DownloadProviders(ctx, providers))
}

func (c *cli) report(res batch.Result) int {
	c.printJSON(res)
	if !res.AllSuccessful() {
		return ExitFailed
	}
	return ExitSuccess
}

func readURLs(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open url list: %w", err)
		}
		defer f.Close()
		r = f
	}

	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}

	return urls, nil
}
