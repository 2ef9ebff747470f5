package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/logger"
)

// Defaults for Options.
const (
	DefaultBatchSize    = 50
	DefaultSubBatchSize = 10
	DefaultPause        = time.Second
)

// Options controls a translation run.
type Options struct {
	BatchSize    int
	SubBatchSize int
	// Pause separates consecutive requests.
	Pause time.Duration
	// ProgressPath persists translations between batches. Empty disables it.
	ProgressPath string
	// NewOnly restricts the run to isNew skills still carrying their
	// English description as the localized one.
	NewOnly bool
	Now     func() time.Time
	// Sleep waits between requests. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o *Options) defaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.SubBatchSize <= 0 {
		o.SubBatchSize = DefaultSubBatchSize
	}
	if o.Pause < 0 {
		o.Pause = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Sleep == nil {
		o.Sleep = sleep
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Progress is the resumable state of a run, keyed by skill id.
type Progress struct {
	Translations map[string]string `json:"translations"`
	LastUpdated  string            `json:"lastUpdated,omitempty"`
}

// LoadProgress reads path, returning empty progress if it does not exist.
func LoadProgress(path string) (*Progress, error) {
	p := &Progress{Translations: map[string]string{}}
	if path == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return nil, fmt.Errorf("cannot read progress file %s: %w", path, err)
	}
	if err := json.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("invalid progress file %s: %w", path, err)
	}
	if p.Translations == nil {
		p.Translations = map[string]string{}
	}
	return p, nil
}

// Save writes p to path, stamping LastUpdated.
func (p *Progress) Save(path string, now time.Time) error {
	if path == "" {
		return nil
	}
	p.LastUpdated = now.UTC().Format(time.RFC3339)
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create progress dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("cannot write progress file %s: %w", path, err)
	}
	return nil
}

// RemoveProgress deletes the progress file once its translations have been
// written back into the catalog.
func RemoveProgress(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot remove progress file %s: %w", path, err)
	}
	return nil
}

// hanThreshold is the share of Han characters below which a long localized
// description is considered untranslated.
const hanThreshold = 0.15

// NeedsTranslation reports whether s lacks a real Chinese description.
func NeedsTranslation(s catalog.Skill) bool {
	cn := s.DescriptionCn
	if cn == "" || cn == s.Description {
		return true
	}
	runes := []rune(cn)
	if len(runes) <= 10 {
		return false
	}
	han := 0
	for _, r := range runes {
		if unicode.Is(unicode.Han, r) {
			han++
		}
	}
	return float64(han)/float64(len(runes)) < hanThreshold
}

// Select returns the skills a run should translate, skipping any already in
// progress.
func Select(skills []catalog.Skill, progress *Progress, newOnly bool) []catalog.Skill {
	var out []catalog.Skill
	for _, s := range skills {
		if progress != nil && progress.Translations[s.ID] != "" {
			continue
		}
		if newOnly {
			if s.IsNew && s.DescriptionCn == s.Description {
				out = append(out, s)
			}
			continue
		}
		if NeedsTranslation(s) {
			out = append(out, s)
		}
	}
	return out
}

func chunk(skills []catalog.Skill, size int) [][]catalog.Skill {
	var out [][]catalog.Skill
	for i := 0; i < len(skills); i += size {
		end := i + size
		if end > len(skills) {
			end = len(skills)
		}
		out = append(out, skills[i:end])
	}
	return out
}

// Report summarizes a run.
type Report struct {
	Selected   int
	Translated int
	Failed     int
	Applied    int
}

// Run translates the selected skills of c and applies every translation in
// progress to it. A failed batch is retried as smaller sub-batches; a failed
// sub-batch is logged and skipped. Progress is saved after every successful
// request. c is modified in place; the caller writes it and then removes the
// progress file.
func Run(ctx context.Context, c *catalog.Catalog, tr Translator, opts Options) (*Report, error) {
	opts.defaults()
	log := logger.G(ctx).WithField("model", tr.ModelID())

	progress, err := LoadProgress(opts.ProgressPath)
	if err != nil {
		return nil, err
	}
	if n := len(progress.Translations); n > 0 {
		log.WithField("translated", n).Info("resuming from previous progress")
	}

	pending := Select(c.Skills, progress, opts.NewOnly)
	report := &Report{Selected: len(pending)}

	batches := chunk(pending, opts.BatchSize)
	for i, batch := range batches {
		blog := log.WithField("batch", fmt.Sprintf("%d/%d", i+1, len(batches))).WithField("size", len(batch))
		blog.Info("translating batch")

		n, err := translateInto(ctx, tr, batch, progress)
		if err == nil {
			report.Translated += n
			if err := progress.Save(opts.ProgressPath, opts.Now()); err != nil {
				return report, err
			}
		} else {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			blog.WithError(err).Warn("batch failed, retrying in smaller batches")
			subs := chunk(batch, opts.SubBatchSize)
			for j, sub := range subs {
				if err := opts.Sleep(ctx, opts.Pause); err != nil {
					return report, err
				}
				n, err := translateInto(ctx, tr, sub, progress)
				if err != nil {
					if ctx.Err() != nil {
						return report, ctx.Err()
					}
					blog.WithError(err).WithField("sub_batch", j+1).Error("sub-batch failed")
					report.Failed += len(sub)
					continue
				}
				report.Translated += n
				if err := progress.Save(opts.ProgressPath, opts.Now()); err != nil {
					return report, err
				}
			}
		}

		if i < len(batches)-1 {
			if err := opts.Sleep(ctx, opts.Pause); err != nil {
				return report, err
			}
		}
	}

	for i := range c.Skills {
		if t := progress.Translations[c.Skills[i].ID]; t != "" {
			c.Skills[i].DescriptionCn = t
			report.Applied++
		}
	}
	c.Version = catalog.SchemaVersion
	c.LastUpdated = opts.Now().Format("2006-01-02")
	return report, nil
}

// translateInto records non-empty translations for batch in progress and
// returns how many it recorded.
func translateInto(ctx context.Context, tr Translator, batch []catalog.Skill, progress *Progress) (int, error) {
	descs := make([]string, len(batch))
	for i, s := range batch {
		descs[i] = s.Description
	}
	out, err := tr.Translate(ctx, descs)
	if err != nil {
		return 0, err
	}
	if len(out) != len(batch) {
		return 0, fmt.Errorf("expected %d translations, got %d", len(batch), len(out))
	}
	n := 0
	for i, s := range batch {
		if out[i] != "" {
			progress.Translations[s.ID] = out[i]
			n++
		}
	}
	return n, nil
}
