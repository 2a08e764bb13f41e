// Package detector is the backend of GET /scan. It runs the packet
// capture and anomaly prediction commands, then summarises the predictions
// CSV they leave behind into a scan.Result.
package detector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/netsentry/internal/log"
	"github.com/ziadkadry99/netsentry/internal/scan"
)

// ErrPredictionsNotFound is returned when the prediction step left no
// predictions file behind.
var ErrPredictionsNotFound = errors.New("predictions file not found")

// NotFoundMessage is reported to the dashboard for ErrPredictionsNotFound.
const NotFoundMessage = "Predictions file not found!"

// CommandError is a pipeline command that exited unsuccessfully.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("running %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Message is the text reported to the dashboard.
func (e *CommandError) Message() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		stderr = e.Err.Error()
	}
	return "Script error: " + stderr
}

// Config describes the pipeline. Relative paths and commands run in Dir.
type Config struct {
	Dir             string
	CaptureCommand  []string
	PredictCommand  []string
	PredictionsFile string
	PredictionsGlob string
	AnomalyColumn   string
	TimeColumn      string
	CommandTimeout  time.Duration
}

// Detector runs one scan at a time: the pipeline commands share the
// predictions file.
type Detector struct {
	cfg    Config
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a Detector.
func New(cfg Config) *Detector {
	if cfg.AnomalyColumn == "" {
		cfg.AnomalyColumn = "anomaly"
	}
	return &Detector{cfg: cfg, logger: log.With("component", "detector")}
}

// Run captures traffic, predicts anomalies and summarises the predictions.
func (d *Detector) Run(ctx context.Context) (*scan.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.logger.Info("starting live packet capture")
	if err := d.execute(ctx, d.cfg.CaptureCommand); err != nil {
		return nil, err
	}

	d.logger.Info("running anomaly detection")
	if err := d.execute(ctx, d.cfg.PredictCommand); err != nil {
		return nil, err
	}

	path, err := d.predictionsPath()
	if err != nil {
		return nil, err
	}
	d.logger.Debug("reading predictions", "path", path)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrPredictionsNotFound
		}
		return nil, fmt.Errorf("opening predictions: %w", err)
	}
	defer f.Close()

	p, err := parsePredictions(f, d.cfg.AnomalyColumn, d.cfg.TimeColumn)
	if err != nil {
		return nil, err
	}

	traffic := p.traffic
	if len(traffic) == 0 {
		traffic = SampleTraffic()
	}

	return &scan.Result{
		Status:       scan.StatusSuccess,
		Anomalies:    p.anomalies,
		TrafficData:  traffic,
		Distribution: Distribute(p.anomalies),
	}, nil
}

// Scan runs the pipeline and reports every failure as an error payload,
// the way GET /scan does. It lets the dashboard scan in-process.
func (d *Detector) Scan(ctx context.Context) (*scan.Result, error) {
	res, _ := d.outcome(ctx)
	return res, nil
}

// outcome runs the pipeline and returns the payload and HTTP status for it.
func (d *Detector) outcome(ctx context.Context) (*scan.Result, int) {
	res, err := d.Run(ctx)
	if err == nil {
		d.logger.Info("scan complete", "anomalies", res.Anomalies)
		return res, http.StatusOK
	}

	var cmdErr *CommandError
	switch {
	case errors.As(err, &cmdErr):
		d.logger.Error("pipeline command failed", "command", cmdErr.Command, "stderr", cmdErr.Stderr)
		return scan.ErrorResult(cmdErr.Message()), http.StatusInternalServerError
	case errors.Is(err, ErrPredictionsNotFound):
		d.logger.Warn("predictions file not found")
		return scan.ErrorResult(NotFoundMessage), http.StatusNotFound
	default:
		d.logger.Error("scan failed", "error", err)
		return scan.ErrorResult(err.Error()), http.StatusInternalServerError
	}
}

// execute runs one pipeline command. An empty command is skipped.
func (d *Detector) execute(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	if d.cfg.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.CommandTimeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = d.cfg.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &CommandError{Command: strings.Join(argv, " "), Stderr: stderr.String(), Err: err}
	}
	d.logger.Debug("command finished", "command", argv[0], "output", strings.TrimSpace(stdout.String()))
	return nil
}

// predictionsPath returns the configured predictions file, or the most
// recently modified file matching the glob.
func (d *Detector) predictionsPath() (string, error) {
	if d.cfg.PredictionsFile != "" {
		return d.resolve(d.cfg.PredictionsFile), nil
	}
	if d.cfg.PredictionsGlob == "" {
		return "", ErrPredictionsNotFound
	}

	matches, err := doublestar.FilepathGlob(d.resolve(d.cfg.PredictionsGlob), doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("matching %s: %w", d.cfg.PredictionsGlob, err)
	}

	var (
		newest  string
		newestT time.Time
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestT) {
			newest, newestT = m, info.ModTime()
		}
	}
	if newest == "" {
		return "", ErrPredictionsNotFound
	}
	return newest, nil
}

func (d *Detector) resolve(path string) string {
	if filepath.IsAbs(path) || d.cfg.Dir == "" {
		return path
	}
	return filepath.Join(d.cfg.Dir, path)
}
