package translate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/skillcat/internal/catalog"
)

type fakeTranslator struct {
	calls [][]string
	// failIf fails any call whose batch contains this description.
	failIf string
	// failLarger fails any batch bigger than this size.
	failLarger int
}

func (f *fakeTranslator) ModelID() string { return "fake" }

func (f *fakeTranslator) Translate(_ context.Context, descs []string) ([]string, error) {
	f.calls = append(f.calls, append([]string(nil), descs...))
	if f.failLarger > 0 && len(descs) > f.failLarger {
		return nil, errors.New("batch too large")
	}
	out := make([]string, len(descs))
	for i, d := range descs {
		if f.failIf != "" && d == f.failIf {
			return nil, errors.New("poison description")
		}
		out[i] = "译:" + d
	}
	return out, nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func fixedNow() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

func skills(n int) []catalog.Skill {
	out := make([]catalog.Skill, n)
	for i := range out {
		d := fmt.Sprintf("desc %d", i)
		out[i] = catalog.Skill{ID: fmt.Sprintf("s%d", i), Description: d}
	}
	return out
}

func TestNeedsTranslation(t *testing.T) {
	cases := []struct {
		name string
		s    catalog.Skill
		want bool
	}{
		{"empty", catalog.Skill{Description: "Manage tasks"}, true},
		{"copied", catalog.Skill{Description: "Manage tasks", DescriptionCn: "Manage tasks"}, true},
		{"translated", catalog.Skill{Description: "Manage tasks", DescriptionCn: "管理 GitHub 上的任务和问题"}, false},
		{"short latin", catalog.Skill{Description: "Manage tasks", DescriptionCn: "GitHub CLI"}, false},
		{"keyword soup", catalog.Skill{Description: "Manage tasks", DescriptionCn: "Manage GitHub tasks 任务"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NeedsTranslation(tc.s))
		})
	}
}

func TestSelect(t *testing.T) {
	in := []catalog.Skill{
		{ID: "a", Description: "x"},
		{ID: "b", Description: "y", DescriptionCn: "已经翻译好了"},
		{ID: "c", Description: "z", DescriptionCn: "z", IsNew: true},
		{ID: "d", Description: "w", DescriptionCn: "w"},
	}
	progress := &Progress{Translations: map[string]string{"a": "已有"}}

	got := Select(in, progress, false)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "d", got[1].ID)

	got = Select(in, progress, true)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestRun_BatchesAndApplies(t *testing.T) {
	c := &catalog.Catalog{Version: "2.0", Skills: skills(7)}
	c.Skills[6].DescriptionCn = "已经有中文翻译了"
	tr := &fakeTranslator{}
	progressPath := filepath.Join(t.TempDir(), "progress.json")

	report, err := Run(context.Background(), c, tr, Options{
		BatchSize:    3,
		ProgressPath: progressPath,
		Now:          fixedNow,
		Sleep:        noSleep,
	})
	require.NoError(t, err)

	assert.Len(t, tr.calls, 2)
	assert.Equal(t, 6, report.Selected)
	assert.Equal(t, 6, report.Translated)
	assert.Equal(t, 6, report.Applied)
	assert.Zero(t, report.Failed)

	assert.Equal(t, "译:desc 0", c.Skills[0].DescriptionCn)
	assert.Equal(t, "已经有中文翻译了", c.Skills[6].DescriptionCn)
	assert.Equal(t, "3.0", c.Version)
	assert.Equal(t, "2026-03-04", c.LastUpdated)

	p, err := LoadProgress(progressPath)
	require.NoError(t, err)
	assert.Len(t, p.Translations, 6)
	assert.Equal(t, "2026-03-04T05:06:07Z", p.LastUpdated)

	require.NoError(t, RemoveProgress(progressPath))
	_, err = os.Stat(progressPath)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, RemoveProgress(progressPath))
}

func TestRun_FallsBackToSubBatches(t *testing.T) {
	c := &catalog.Catalog{Skills: skills(12)}
	tr := &fakeTranslator{failLarger: 5, failIf: "desc 7"}

	var pauses int
	report, err := Run(context.Background(), c, tr, Options{
		BatchSize:    12,
		SubBatchSize: 5,
		Now:          fixedNow,
		Sleep: func(context.Context, time.Duration) error {
			pauses++
			return nil
		},
	})
	require.NoError(t, err)

	// one full batch, then sub-batches of 5, 5 and 2
	require.Len(t, tr.calls, 4)
	assert.Len(t, tr.calls[1], 5)
	assert.Len(t, tr.calls[3], 2)
	assert.Equal(t, 3, pauses)

	assert.Equal(t, 5, report.Failed, "the sub-batch holding desc 7 is skipped")
	assert.Equal(t, 7, report.Translated)
	assert.Equal(t, 7, report.Applied)
	assert.Empty(t, c.Skills[7].DescriptionCn)
	assert.Equal(t, "译:desc 11", c.Skills[11].DescriptionCn)
}

func TestRun_ResumesFromProgress(t *testing.T) {
	progressPath := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(progressPath, []byte(`{"translations":{"s0":"旧的翻译"}}`), 0o644))

	c := &catalog.Catalog{Skills: skills(3)}
	tr := &fakeTranslator{}
	report, err := Run(context.Background(), c, tr, Options{ProgressPath: progressPath, Sleep: noSleep, Now: fixedNow})
	require.NoError(t, err)

	require.Len(t, tr.calls, 1)
	assert.Equal(t, []string{"desc 1", "desc 2"}, tr.calls[0])
	assert.Equal(t, 3, report.Applied)
	assert.Equal(t, "旧的翻译", c.Skills[0].DescriptionCn)
}

func TestRun_NewOnly(t *testing.T) {
	c := &catalog.Catalog{Skills: []catalog.Skill{
		{ID: "old", Description: "old one"},
		{ID: "new", Description: "new one", DescriptionCn: "new one", IsNew: true},
	}}
	tr := &fakeTranslator{}
	_, err := Run(context.Background(), c, tr, Options{NewOnly: true, Sleep: noSleep, Now: fixedNow})
	require.NoError(t, err)

	require.Len(t, tr.calls, 1)
	assert.Equal(t, []string{"new one"}, tr.calls[0])
	assert.Empty(t, c.Skills[0].DescriptionCn)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &catalog.Catalog{Skills: skills(4)}
	tr := &fakeTranslator{}
	_, err := Run(ctx, c, tr, Options{
		BatchSize: 2,
		Now:       fixedNow,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, tr.calls, 1)
}

func TestLoadProgress_Invalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(p, []byte("{"), 0o644))
	_, err := LoadProgress(p)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid progress file"))
}
