// Package pipeline sequences the preprocessing stages over one in-memory
// table: load, drop missing rows, deduplicate, summarize, prune columns,
// min-max scale, persist. Stages run synchronously in fixed order; any stage
// failure aborts the run and nothing is written.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"

	"nutriprep/internal/dataset"
	"nutriprep/internal/datasource"
	"nutriprep/internal/datasource/file"
	"nutriprep/internal/describe"
	"nutriprep/internal/metrics"
	pcsv "nutriprep/internal/parser/csv"
	"nutriprep/internal/quality"
	"nutriprep/internal/transform"
)

// Options configures a single preprocessing run.
type Options struct {
	// Job names the run for logging and metrics labels.
	Job string

	// InputPath is the CSV to load. Recorded in the run metadata even when
	// Source overrides where the bytes actually come from.
	InputPath string

	// Source overrides where input is read from. When nil, a local file
	// source on InputPath is used.
	Source datasource.Source

	// OutputPath, when non-empty, is where the cleaned CSV is written.
	OutputPath string

	// MetadataPath, when non-empty, is where the run metadata JSON is
	// written.
	MetadataPath string

	// Comma, TrimSpace and NATokens configure the parser (see csv.Options).
	Comma     rune
	TrimSpace bool
	NATokens  []string

	// DropColumns lists columns to remove; names not present in the dataset
	// are ignored.
	DropColumns []string

	// NormalizeColumns restricts min-max scaling to the listed columns.
	// Empty means every numeric column.
	NormalizeColumns []string
}

// Shape is a rows × columns pair.
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// RunMetadata describes one completed run. It is assembled once at the end
// of Run and not modified afterwards.
type RunMetadata struct {
	RunID                string            `json:"run_id"`
	Job                  string            `json:"job"`
	InputPath            string            `json:"input_path"`
	OutputPath           string            `json:"output_path,omitempty"`
	LoadedShape          Shape             `json:"loaded_shape"`
	FinalShape           Shape             `json:"final_shape"`
	RowsDroppedMissing   int               `json:"rows_dropped_missing"`
	RowsDroppedDuplicate int               `json:"rows_dropped_duplicate"`
	DroppedColumns       []string          `json:"dropped_columns,omitempty"`
	NormalizedColumns    []string          `json:"normalized_columns,omitempty"`
	Scaler               *transform.Scaler `json:"scaler,omitempty"`
	StartedAt            time.Time         `json:"started_at"`
	DurationSeconds      float64           `json:"duration_seconds"`
}

// Result carries the final table and everything observed along the way.
type Result struct {
	Table      *dataset.Table
	Missing    quality.MissingReport
	Duplicates quality.DuplicateReport
	Summary    describe.Summary
	Metadata   RunMetadata
	Elapsed    time.Duration
}

// Pipeline runs the preprocessing stages in fixed order.
type Pipeline struct {
	log *logrus.Logger
	opt Options
}

// New constructs a Pipeline. A nil logger falls back to a default logrus
// logger.
func New(log *logrus.Logger, opt Options) *Pipeline {
	if log == nil {
		log = logrus.New()
	}
	return &Pipeline{log: log, opt: opt}
}

// Run executes the full pipeline once and returns the final table together
// with the run metadata. Errors from any stage propagate unmodified; when
// loading fails because the input does not exist, errors.Is(err,
// os.ErrNotExist) holds at the caller.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res, err := p.run(ctx)
	metrics.RecordRun(p.opt.Job, err)
	return res, err
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	started := time.Now()

	runID, err := nanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"run_id": runID,
		"job":    p.opt.Job,
		"input":  p.opt.InputPath,
	}).Info("starting preprocessing run")

	tbl, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	loadedRows, loadedCols := tbl.Shape()

	tbl, missing := p.dropMissing(tbl)
	tbl, dups := p.deduplicate(tbl)
	sum := p.summarize(tbl)
	tbl, removed := p.prune(tbl)
	tbl, scaler, targets, err := p.normalize(tbl)
	if err != nil {
		return nil, err
	}

	if p.opt.OutputPath != "" {
		if err := p.writeCSV(tbl); err != nil {
			return nil, err
		}
	}

	finalRows, finalCols := tbl.Shape()
	elapsed := time.Since(started)

	meta := RunMetadata{
		RunID:                runID,
		Job:                  p.opt.Job,
		InputPath:            p.opt.InputPath,
		OutputPath:           p.opt.OutputPath,
		LoadedShape:          Shape{Rows: loadedRows, Cols: loadedCols},
		FinalShape:           Shape{Rows: finalRows, Cols: finalCols},
		RowsDroppedMissing:   missing.RowsDropped,
		RowsDroppedDuplicate: dups.DuplicateRows,
		DroppedColumns:       removed,
		NormalizedColumns:    targets,
		Scaler:               scaler,
		StartedAt:            started.UTC(),
		DurationSeconds:      elapsed.Seconds(),
	}

	if p.opt.MetadataPath != "" {
		if err := writeMetadataFile(p.opt.MetadataPath, meta); err != nil {
			return nil, err
		}
		p.log.WithField("path", p.opt.MetadataPath).Info("wrote run metadata")
	}

	p.log.WithFields(logrus.Fields{
		"rows":     humanize.Comma(int64(finalRows)),
		"cols":     finalCols,
		"duration": elapsed.Truncate(time.Millisecond).String(),
	}).Info("run complete")

	return &Result{
		Table:      tbl,
		Missing:    missing,
		Duplicates: dups,
		Summary:    sum,
		Metadata:   meta,
		Elapsed:    elapsed,
	}, nil
}

func (p *Pipeline) load(ctx context.Context) (*dataset.Table, error) {
	start := time.Now()
	tbl, err := p.readTable(ctx)
	metrics.RecordStep(p.opt.Job, "load", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	rows, cols := tbl.Shape()
	p.log.WithFields(logrus.Fields{
		"rows":    humanize.Comma(int64(rows)),
		"cols":    cols,
		"columns": tbl.Names(),
	}).Info("loaded dataset")
	metrics.RecordRows(p.opt.Job, "loaded", int64(rows))
	return tbl, nil
}

func (p *Pipeline) readTable(ctx context.Context) (*dataset.Table, error) {
	src := p.opt.Source
	if src == nil {
		src = file.NewLocal(p.opt.InputPath)
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	parser := pcsv.NewParser(pcsv.Options{
		Comma:     p.opt.Comma,
		TrimSpace: p.opt.TrimSpace,
		NATokens:  p.opt.NATokens,
	})
	return parser.Parse(rc)
}

func (p *Pipeline) dropMissing(t *dataset.Table) (*dataset.Table, quality.MissingReport) {
	start := time.Now()
	out, rep := quality.DropMissing(t)
	metrics.RecordStep(p.opt.Job, "missing", nil, time.Since(start))

	if rep.Total == 0 {
		p.log.Info("no missing values")
		return out, rep
	}
	for _, pc := range rep.PerColumn {
		if pc.Count > 0 {
			p.log.WithFields(logrus.Fields{"column": pc.Column, "missing": pc.Count}).Info("missing values in column")
		}
	}
	p.log.WithField("rows_dropped", rep.RowsDropped).Info("dropped rows with missing values")
	metrics.RecordRows(p.opt.Job, "missing_dropped", int64(rep.RowsDropped))
	return out, rep
}

func (p *Pipeline) deduplicate(t *dataset.Table) (*dataset.Table, quality.DuplicateReport) {
	start := time.Now()
	out, rep := quality.Deduplicate(t)
	metrics.RecordStep(p.opt.Job, "dedup", nil, time.Since(start))

	for _, pc := range rep.PerTextColumn {
		p.log.WithFields(logrus.Fields{"column": pc.Column, "duplicates": pc.Count}).Debug("duplicate values within column")
	}
	if rep.DuplicateRows == 0 {
		p.log.Info("no duplicate rows")
		return out, rep
	}
	p.log.WithField("rows_dropped", rep.DuplicateRows).Info("dropped duplicate rows")
	metrics.RecordRows(p.opt.Job, "duplicate_dropped", int64(rep.DuplicateRows))
	return out, rep
}

func (p *Pipeline) summarize(t *dataset.Table) describe.Summary {
	start := time.Now()
	sum := describe.Summarize(t)
	metrics.RecordStep(p.opt.Job, "describe", nil, time.Since(start))

	for _, c := range sum.Columns {
		p.log.WithFields(logrus.Fields{
			"column": c.Column,
			"count":  c.Count,
			"mean":   c.Mean,
			"std":    c.Std,
			"min":    c.Min,
			"max":    c.Max,
		}).Debug("column statistics")
	}
	p.log.WithField("numeric_columns", len(sum.Columns)).Info("computed summary statistics")
	return sum
}

func (p *Pipeline) prune(t *dataset.Table) (*dataset.Table, []string) {
	start := time.Now()
	out, removed := transform.Prune(t, p.opt.DropColumns)
	metrics.RecordStep(p.opt.Job, "prune", nil, time.Since(start))

	if len(removed) == 0 {
		p.log.Debug("no columns pruned")
	} else {
		p.log.WithField("columns", removed).Info("pruned columns")
	}
	return out, removed
}

func (p *Pipeline) normalize(t *dataset.Table) (*dataset.Table, *transform.Scaler, []string, error) {
	start := time.Now()
	out, scaler, targets, err := transform.Normalize(t, p.opt.NormalizeColumns)
	metrics.RecordStep(p.opt.Job, "normalize", err, time.Since(start))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("normalize: %w", err)
	}

	for _, r := range scaler.Verify(out) {
		p.log.WithFields(logrus.Fields{"column": r.Column, "min": r.Min, "max": r.Max}).Debug("post-scale range")
	}
	p.log.WithField("columns", targets).Info("normalized columns")
	return out, scaler, targets, nil
}

func (p *Pipeline) writeCSV(t *dataset.Table) error {
	start := time.Now()
	err := writeTableFile(p.opt.OutputPath, t, p.opt.Comma)
	metrics.RecordStep(p.opt.Job, "write", err, time.Since(start))
	if err != nil {
		return err
	}

	rows, _ := t.Shape()
	p.log.WithFields(logrus.Fields{"path": p.opt.OutputPath, "rows": rows}).Info("wrote cleaned dataset")
	metrics.RecordRows(p.opt.Job, "written", int64(rows))
	return nil
}

// writeTableFile writes the table to a temp file in the destination directory
// first, then renames it over the target, so a failed run never leaves a
// partial output behind.
func writeTableFile(path string, t *dataset.Table, comma rune) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := pcsv.Write(tmp, t, comma); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}

	name := tmp.Name()
	tmp = nil
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

func writeMetadataFile(path string, meta RunMetadata) error {
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	b = append(b, '\n')
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads a metadata JSON written by a previous run.
func ReadMetadata(path string) (RunMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return RunMetadata{}, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()

	var meta RunMetadata
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return RunMetadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}
