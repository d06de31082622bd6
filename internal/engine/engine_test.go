package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pastrypath/pastrypath/internal/apperr"
	"github.com/pastrypath/pastrypath/internal/catalog"
	"github.com/pastrypath/pastrypath/internal/history"
	"github.com/pastrypath/pastrypath/internal/logger"
	"github.com/pastrypath/pastrypath/internal/progress"
	"github.com/pastrypath/pastrypath/internal/recommend"
	"github.com/pastrypath/pastrypath/internal/store"
	"github.com/pastrypath/pastrypath/internal/unlock"
)

func lesson(id string, prereqs ...string) catalog.Module {
	return catalog.Module{
		ID: id, Title: id, Prerequisites: prereqs,
		Difficulty: catalog.LevelBeginner, EstimatedMinutes: 30, Type: catalog.ModuleLesson,
	}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Path{
		{
			ID: "P1", Title: "Choux Basics", Category: "foundations",
			Level: catalog.LevelBeginner, Difficulty: catalog.DifficultyEasy, DurationMinutes: 60,
			Tags: []string{"choux"}, StudentCount: 100, Rating: 4.5,
			Modules: []catalog.Module{lesson("M1"), lesson("M2", "M1")},
		},
		{
			ID: "P2", Title: "Éclairs", Category: "foundations",
			Level: catalog.LevelIntermediate, Difficulty: catalog.DifficultyMedium, DurationMinutes: 90,
			Tags: []string{"choux", "glaze"}, StudentCount: 50, Rating: 4.2,
			Modules:       []catalog.Module{lesson("N1")},
			Prerequisites: []string{"P1"},
		},
	})
	require.NoError(t, err)
	return cat
}

func tickingClock() func() time.Time {
	t := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

type fixture struct {
	engine *Engine
	mem    *store.Memory
	logs   *observer.ObservedLogs
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWith(t, store.NewMemory())
}

func newFixtureWith(t *testing.T, mem *store.Memory) fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	e, err := New(context.Background(), Options{
		Catalog: testCatalog(t),
		Blobs:   mem,
		Events:  mem,
		Logger:  logger.FromZap(zap.New(core)),
		Now:     tickingClock(),
	})
	require.NoError(t, err)
	return fixture{engine: e, mem: mem, logs: logs}
}

func eventTypes(evs []history.Event) []history.EventType {
	out := make([]history.EventType, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}

func resultIDs(rs []unlock.Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestCompleteModule_HalfPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.engine.CompleteModule(ctx, "P1", "M1", progress.Ptr(90.0))
	require.NoError(t, err)

	assert.Equal(t, progress.StatusCompleted, out.Module.Status)
	assert.Equal(t, 50.0, out.Path.CompletionPercentage)
	assert.Equal(t, progress.StatusInProgress, out.Path.Status)

	assert.Equal(t, []history.EventType{history.ModuleStarted, history.ModuleCompleted, history.PathStarted}, eventTypes(out.Events))
	assert.Equal(t, []string{"P1", "M1", "M2"}, resultIDs(out.Unlocked))

	require.Len(t, out.Achievements, 1)
	assert.Equal(t, "first-bake", out.Achievements[0].ID)
	assert.Equal(t, 1, out.Stats.TotalModulesCompleted)
	assert.Equal(t, 90.0, out.Stats.AverageScore)
	assert.Equal(t, 1, out.Stats.CurrentStreak)
}

func TestCompletePath_UnlocksDependents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CompleteModule(ctx, "P1", "M1", nil)
	require.NoError(t, err)

	check, err := f.engine.CheckPath("P2")
	require.NoError(t, err)
	assert.False(t, check.CanUnlock)
	assert.Equal(t, []string{"P1"}, check.MissingPrerequisiteIDs)

	out, err := f.engine.CompleteModule(ctx, "P1", "M2", nil)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusCompleted, out.Path.Status)
	assert.Contains(t, eventTypes(out.Events), history.PathCompleted)
	assert.Equal(t, []string{"P2", "N1"}, resultIDs(out.Unlocked))

	var ids []string
	for _, it := range out.Achievements {
		ids = append(ids, it.ID)
	}
	assert.Contains(t, ids, "path-finder")
}

func TestUncompleteModule_KeepsUnlocksAndRecordsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CompleteModule(ctx, "P1", "M1", nil)
	require.NoError(t, err)

	out, err := f.engine.UncompleteModule(ctx, "P1", "M1")
	require.NoError(t, err)
	assert.Equal(t, progress.StatusNotStarted, out.Module.Status)
	assert.Nil(t, out.Module.CompletedAt)
	assert.Empty(t, out.Events)

	ov, err := f.engine.Overview("P1")
	require.NoError(t, err)
	require.Len(t, ov.Modules, 2)
	assert.True(t, ov.Modules[1].IsUnlocked, "M2 stays unlocked after M1 is reverted")

	check, err := f.engine.CheckModule("M2")
	require.NoError(t, err)
	assert.True(t, check.IsUnlocked)
	assert.False(t, check.CanUnlock)

	rec := f.engine.Reconcile(ctx, false)
	assert.True(t, rec.Consistent())
	assert.Equal(t, []string{"M1"}, rec.Reverted)
}

func TestStartAndRecordTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.engine.StartModule(ctx, "P1", "M1")
	require.NoError(t, err)
	assert.Equal(t, progress.StatusInProgress, out.Module.Status)
	assert.Equal(t, 1, out.Module.Attempts)
	assert.Equal(t, []history.EventType{history.ModuleStarted, history.PathStarted}, eventTypes(out.Events))

	out, err = f.engine.StartModule(ctx, "P1", "M1")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Module.Attempts)
	assert.Empty(t, out.Events)

	_, err = f.engine.RecordTime(ctx, "P1", "M1", 15)
	require.NoError(t, err)
	out, err = f.engine.RecordTime(ctx, "P1", "M1", 10)
	require.NoError(t, err)
	assert.Equal(t, 25, out.Module.TimeSpentMinutes)
	assert.Equal(t, 25, out.Path.TimeSpentMinutes)

	_, err = f.engine.RecordTime(ctx, "P1", "M1", 0)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	_, err = f.engine.UpdateModule(ctx, "P1", "M1", progress.ModuleUpdate{CompletionPercentage: progress.Ptr(140.0)})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestUnknownIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CompleteModule(ctx, "P1", "ghost", nil)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	// N1 exists, but not in P1.
	_, err = f.engine.CompleteModule(ctx, "P1", "N1", nil)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = f.engine.PathProgress("nope")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = f.engine.AddBookmark(ctx, "ghost", "")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUntouchedReadsAreDefaults(t *testing.T) {
	f := newFixture(t)

	rec, err := f.engine.ModuleProgress("P1", "M2")
	require.NoError(t, err)
	assert.Equal(t, progress.StatusNotStarted, rec.Status)
	assert.Equal(t, "P1", rec.PathID)

	p, err := f.engine.PathProgress("P2")
	require.NoError(t, err)
	assert.Equal(t, progress.StatusNotStarted, p.Status)
	assert.Equal(t, 0.0, p.CompletionPercentage)
}

func TestManualUnlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.engine.UnlockModule(ctx, "M1")
	require.NoError(t, err)
	assert.True(t, res.NewlyUnlocked)

	res, err = f.engine.UnlockModule(ctx, "M1")
	require.NoError(t, err)
	assert.False(t, res.NewlyUnlocked)

	res, err = f.engine.UnlockPath(ctx, "P2")
	require.NoError(t, err)
	assert.False(t, res.NewlyUnlocked)

	changes := f.engine.AutoUnlock(ctx)
	assert.Equal(t, []string{"P1"}, resultIDs(changes))
	assert.Empty(t, f.engine.AutoUnlock(ctx))
}

func TestImportProgress_MalformedLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CompleteModule(ctx, "P1", "M1", progress.Ptr(70.0))
	require.NoError(t, err)
	before := f.engine.progress.Snapshot()

	good, err := f.engine.ExportProgress(ctx)
	require.NoError(t, err)
	wrongKind, err := f.engine.ExportBookmarks(ctx)
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(good, &env))
	env["version"] = "2.0.0"
	futureMajor, err := json.Marshal(env)
	require.NoError(t, err)

	env["version"] = "1.0.0"
	env["data"] = map[string]any{"modules": map[string]any{"M1": map[string]any{"pathId": "P1", "status": "done", "completionPercentage": 100}}}
	badStatus, err := json.Marshal(env)
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload []byte
	}{
		{"malformed JSON", []byte(`{"version": "1.0.0", "kind": "progress", "data": {`)},
		{"not an object", []byte(`[1, 2, 3]`)},
		{"other kind", wrongKind},
		{"future major", futureMajor},
		{"invalid status", badStatus},
		{"not semver", []byte(`{"version": "one", "kind": "progress", "data": {"modules": {}}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, f.engine.ImportProgress(ctx, tt.payload))
			assert.Equal(t, before, f.engine.progress.Snapshot())
			assert.Error(t, ValidateImport(KindProgress, tt.payload))
		})
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := newFixture(t)
	ctx := context.Background()

	_, err := src.engine.CompleteModule(ctx, "P1", "M1", progress.Ptr(88.0))
	require.NoError(t, err)
	_, err = src.engine.AddBookmark(ctx, "M2", "practice piping")
	require.NoError(t, err)

	prog, err := src.engine.ExportProgress(ctx)
	require.NoError(t, err)
	marks, err := src.engine.ExportBookmarks(ctx)
	require.NoError(t, err)
	evs, err := src.engine.ExportEvents(ctx)
	require.NoError(t, err)

	dst := newFixture(t)
	require.True(t, dst.engine.ImportProgress(ctx, prog))
	require.True(t, dst.engine.ImportBookmarks(ctx, marks))

	p, err := dst.engine.PathProgress("P1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.CompletionPercentage)
	assert.Equal(t, []string{"M1"}, p.CompletedModuleIDs)

	list := dst.engine.Bookmarks()
	require.Len(t, list, 1)
	assert.Equal(t, "practice piping", list[0].Note)

	// Progress came in without events; the log is now behind the records.
	rec := dst.engine.Reconcile(ctx, false)
	assert.Equal(t, []string{"M1"}, rec.MissingEvents)

	require.True(t, dst.engine.ImportEvents(ctx, evs))
	assert.True(t, dst.engine.Reconcile(ctx, false).Consistent())
	assert.Len(t, dst.engine.RecentEvents(ctx, 0), 3)
}

func TestImportProgress_UnknownEmptyPathIsNotCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payload, err := json.Marshal(Envelope{
		Version:    FormatVersion,
		Kind:       KindProgress,
		ExportedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Data:       json.RawMessage(`{"modules": {}, "paths": {"ghost": {"pathId": "ghost"}}}`),
	})
	require.NoError(t, err)
	require.True(t, f.engine.ImportProgress(ctx, payload))

	_, ok := f.engine.progress.PathProgress("ghost")
	assert.False(t, ok)
	assert.Equal(t, 0, f.engine.Stats(ctx).TotalPathsCompleted)
	for _, item := range f.engine.Achievements() {
		assert.False(t, item.IsUnlocked, item.ID)
	}
}

func TestImportEvents_DuplicateIDsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CompleteModule(ctx, "P1", "M1", nil)
	require.NoError(t, err)
	before := f.engine.RecentEvents(ctx, 0)

	payload, err := json.Marshal(Envelope{
		Version:    FormatVersion,
		Kind:       KindEvents,
		ExportedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Data: json.RawMessage(`[
			{"id": "e1", "type": "module_completed", "moduleId": "M1", "pathId": "P1", "timestamp": "2026-04-01T10:00:00Z"},
			{"id": "e1", "type": "module_completed", "moduleId": "M2", "pathId": "P1", "timestamp": "2026-04-01T11:00:00Z"}
		]`),
	})
	require.NoError(t, err)

	assert.Error(t, ValidateImport(KindEvents, payload))
	assert.False(t, f.engine.ImportEvents(ctx, payload))
	assert.Equal(t, before, f.engine.RecentEvents(ctx, 0))
}

func TestReconcile_Repair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CompleteModule(ctx, "P1", "M1", nil)
	require.NoError(t, err)
	require.NoError(t, f.engine.ClearHistory(ctx))

	rec := f.engine.Reconcile(ctx, true)
	assert.Equal(t, []string{"M1"}, rec.MissingEvents)
	assert.Equal(t, 1, rec.Repaired)

	evs := f.engine.RecentEvents(ctx, 0)
	require.Len(t, evs, 1)
	assert.Equal(t, history.ModuleCompleted, evs[0].Type)

	m, err := f.engine.ModuleProgress("P1", "M1")
	require.NoError(t, err)
	require.NotNil(t, m.CompletedAt)
	assert.Equal(t, *m.CompletedAt, evs[0].Timestamp)

	assert.True(t, f.engine.Reconcile(ctx, false).Consistent())
}

func TestCompletionRecordsAlwaysHaveEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	steps := []func() error{
		func() error { _, err := f.engine.StartModule(ctx, "P1", "M1"); return err },
		func() error { _, err := f.engine.CompleteModule(ctx, "P1", "M1", progress.Ptr(95.0)); return err },
		func() error { _, err := f.engine.UncompleteModule(ctx, "P1", "M1"); return err },
		func() error {
			_, err := f.engine.UpdateModule(ctx, "P1", "M2", progress.ModuleUpdate{CompletionPercentage: progress.Ptr(100.0)})
			return err
		},
		func() error { _, err := f.engine.CompleteModule(ctx, "P1", "M1", nil); return err },
		func() error { _, err := f.engine.CompleteModule(ctx, "P2", "N1", nil); return err },
		func() error { _, err := f.engine.UncompleteModule(ctx, "P1", "M2"); return err },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		assert.True(t, f.engine.Reconcile(ctx, false).Consistent(), "step %d", i)
	}
}

func TestState_PersistsAcrossEngines(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	first := newFixtureWith(t, mem)
	_, err := first.engine.CompleteModule(ctx, "P1", "M1", progress.Ptr(90.0))
	require.NoError(t, err)
	_, err = first.engine.AddBookmark(ctx, "M2", "")
	require.NoError(t, err)

	second := newFixtureWith(t, mem)
	p, err := second.engine.PathProgress("P1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.CompletionPercentage)

	ov, err := second.engine.Overview("P1")
	require.NoError(t, err)
	assert.True(t, ov.IsUnlocked)
	assert.True(t, ov.Modules[1].IsUnlocked)
	assert.True(t, ov.Modules[1].Bookmarked)

	assert.Equal(t, 10, second.engine.Level().Points)
	assert.Equal(t, 1, second.engine.Stats(ctx).TotalModulesCompleted)
}

func TestNew_CorruptStateStartsEmpty(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Save(ctx, KeyProgress, []byte("{not json")))

	f := newFixtureWith(t, mem)
	p, err := f.engine.PathProgress("P1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.CompletionPercentage)

	warnings := f.logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage("stored state is corrupt, starting empty").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, KeyProgress, warnings[0].ContextMap()["key"])
}

type failingBlobs struct{}

func (failingBlobs) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}
func (failingBlobs) Save(context.Context, string, []byte) error { return errors.New("disk on fire") }
func (failingBlobs) Delete(context.Context, string) error       { return errors.New("disk on fire") }

func TestPersistenceFailures_AreLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := context.Background()
	e, err := New(ctx, Options{
		Catalog: testCatalog(t),
		Blobs:   failingBlobs{},
		Events:  store.NewMemory(),
		Logger:  logger.FromZap(zap.New(core)),
		Now:     tickingClock(),
	})
	require.NoError(t, err)

	out, err := e.CompleteModule(ctx, "P1", "M1", nil)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusCompleted, out.Module.Status)

	assert.NotEmpty(t, logs.FilterMessage("load failed, starting empty").All())
	assert.NotEmpty(t, logs.FilterMessage("save failed").All())

	err = e.Reset(ctx)
	assert.True(t, errors.Is(err, apperr.ErrPersistenceUnavailable))
	p, _ := e.PathProgress("P1")
	assert.Equal(t, 0.0, p.CompletionPercentage)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CompleteModule(ctx, "P1", "M1", nil)
	require.NoError(t, err)
	_, err = f.engine.AddBookmark(ctx, "M1", "")
	require.NoError(t, err)

	require.NoError(t, f.engine.Reset(ctx))

	assert.Empty(t, f.engine.Bookmarks())
	assert.Empty(t, f.engine.RecentEvents(ctx, 0))
	assert.Equal(t, 0, f.engine.Level().Points)
	for _, key := range []string{KeyProgress, KeyUnlocks, KeyAchievements, KeyBookmarks} {
		_, ok, err := f.mem.Load(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestRecommend_PrefersUnfinishedBeginnerPath(t *testing.T) {
	f := newFixture(t)
	recs := f.engine.Recommend(0, recommend.Filters{})
	require.Len(t, recs, 2)
	assert.Equal(t, "P1", recs[0].Path.ID)
}
