package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/mocks"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// fakeClock returns successive instants one minute apart.
type fakeClock struct {
	mu   sync.Mutex
	next time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{next: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.next
	c.next = c.next.Add(time.Minute)

	return now
}

type syncFixture struct {
	engine *SyncEngine
	store  *QuoteStore
	kv     *memory.Store
	source *mocks.MockRemoteQuoteSource
	clock  *fakeClock
}

func newSyncFixture(t *testing.T, opts SyncOptions, initial ...domain.Quote) *syncFixture {
	t.Helper()

	store, kv := seededStore(t, initial...)
	source := mocks.NewMockRemoteQuoteSource(t)
	clock := newFakeClock()

	if opts.BatchSize == 0 {
		opts.BatchSize = 5
	}

	engine, err := NewSyncEngine(SyncEngineConfig{
		Store:   store,
		Source:  source,
		Meta:    kv,
		Options: opts,
		Logger:  discardLogger(),
		Now:     clock.Now,
	})
	require.NoError(t, err)

	return &syncFixture{engine: engine, store: store, kv: kv, source: source, clock: clock}
}

func records(titles ...string) []ports.RemoteRecord {
	out := make([]ports.RemoteRecord, len(titles))
	for i, title := range titles {
		out[i] = ports.RemoteRecord{ID: i + 1, Title: title, Body: "body"}
	}

	return out
}

func TestNewSyncEngine_RequiresDependencies(t *testing.T) {
	store, kv := seededStore(t)
	source := mocks.NewMockRemoteQuoteSource(t)

	tests := []struct {
		name string
		cfg  SyncEngineConfig
	}{
		{"no store", SyncEngineConfig{Source: source, Meta: kv}},
		{"no source", SyncEngineConfig{Store: store, Meta: kv}},
		{"no meta", SyncEngineConfig{Store: store, Source: source}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSyncEngine(tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestSyncEngine_SyncOnceSuccess(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{BatchSize: 3}, qt("local", "Mine"))
	f.source.EXPECT().FetchBatch(mock.Anything, 3).Return(records("alpha", "  ", "beta"), nil).Once()

	var seen []SyncStatus
	f.engine.Subscribe(func(st SyncStatus) { seen = append(seen, st) })

	result, err := f.engine.SyncOnce(context.Background())

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 2, result.Merged)
	assert.Equal(t, []domain.Quote{
		qt("local", "Mine"),
		qt("alpha", domain.SentinelCategory),
		qt("beta", domain.SentinelCategory),
	}, f.store.Quotes())

	status := f.engine.Status()
	assert.Equal(t, SyncIdle, status.State)
	assert.Equal(t, SyncSucceeded, status.LastResult)
	assert.True(t, status.HasSynced)
	assert.Equal(t, result.SyncedAt, status.LastSyncTime)
	assert.Equal(t, 2, status.LastMerged)
	assert.Empty(t, status.LastError)

	require.Len(t, seen, 2)
	assert.Equal(t, SyncSyncing, seen[0].State)
	assert.Equal(t, SyncSucceeded, seen[1].State)
	assert.Equal(t, result.SyncedAt, seen[1].LastSyncTime)

	raw, found, err := f.kv.Get(context.Background(), ports.KeyLastSync)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2026-03-14T09:26:53Z", string(raw))
}

func TestSyncEngine_SyncOnceFailureLeavesStoreUnchanged(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{}, qt("local", "Mine"))
	f.source.EXPECT().FetchBatch(mock.Anything, 5).Return(nil, errors.New("dial tcp: connection refused"))

	var seen []SyncStatus
	f.engine.Subscribe(func(st SyncStatus) { seen = append(seen, st) })

	before := f.store.Quotes()

	result, err := f.engine.SyncOnce(context.Background())

	require.ErrorIs(t, err, domain.ErrUnavailable)

	step, ok := GetExecutionStep(err)
	require.True(t, ok)
	assert.Equal(t, StepPerform, step)

	assert.Equal(t, SyncResult{}, result)
	assert.Equal(t, before, f.store.Quotes())

	status := f.engine.Status()
	assert.Equal(t, SyncIdle, status.State)
	assert.Equal(t, SyncFailed, status.LastResult)
	assert.False(t, status.HasSynced)
	assert.Contains(t, status.LastError, "connection refused")

	require.Len(t, seen, 2)
	assert.Equal(t, SyncFailed, seen[1].State)

	_, found, err := f.kv.Get(context.Background(), ports.KeyLastSync)
	require.NoError(t, err)
	assert.False(t, found, "sync time is only written after a successful merge")
}

func TestSyncEngine_FailureAfterSuccessKeepsLastSyncTime(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})
	f.source.EXPECT().FetchBatch(mock.Anything, 5).Return(records("alpha"), nil).Once()
	f.source.EXPECT().FetchBatch(mock.Anything, 5).Return(nil, domain.NewUnavailableError("remote", "timeout")).Once()

	first, err := f.engine.SyncOnce(context.Background())
	require.NoError(t, err)

	_, err = f.engine.SyncOnce(context.Background())
	require.ErrorIs(t, err, domain.ErrUnavailable)

	status := f.engine.Status()
	assert.Equal(t, SyncFailed, status.LastResult)
	assert.True(t, status.HasSynced)
	assert.Equal(t, first.SyncedAt, status.LastSyncTime)
}

func TestSyncEngine_CrossCategoryConflictReplacesInPlace(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{}, qt("Keep it simple", "Design"))
	f.source.EXPECT().FetchBatch(mock.Anything, 5).Return(records("Keep it simple"), nil)

	result, err := f.engine.SyncOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Merged)
	assert.Equal(t, []domain.Quote{qt("Keep it simple", domain.SentinelCategory)}, f.store.Quotes())
}

func TestSyncEngine_RepeatedSyncIsIdempotent(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{}, qt("local", "Mine"))
	f.source.EXPECT().FetchBatch(mock.Anything, 5).Return(records("alpha", "beta"), nil).Twice()

	first, err := f.engine.SyncOnce(context.Background())
	require.NoError(t, err)

	afterFirst := f.store.Quotes()

	second, err := f.engine.SyncOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, first.Merged)
	assert.Equal(t, 0, second.Merged)
	assert.Equal(t, afterFirst, f.store.Quotes())
	assert.Len(t, f.store.Quotes(), 3)
	assert.True(t, second.SyncedAt.After(first.SyncedAt), "sync time advances on every success")
	assert.Equal(t, second.SyncedAt, f.engine.Status().LastSyncTime)
}

func TestSyncEngine_TruncatesOversizedBatch(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{BatchSize: 2}, qt("local", "Mine"))
	f.source.EXPECT().FetchBatch(mock.Anything, 2).Return(records("a", "b", "c", "d"), nil)

	result, err := f.engine.SyncOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 3, f.store.Len())
}

func TestSyncEngine_InvalidBatchSizeNeverFetches(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{BatchSize: -1})

	_, err := f.engine.SyncOnce(context.Background())

	require.ErrorIs(t, err, domain.ErrValidation)

	step, _ := GetExecutionStep(err)
	assert.Equal(t, StepValidate, step)
	f.source.AssertNotCalled(t, "FetchBatch", mock.Anything, mock.Anything)
}

func TestSyncEngine_OverlappingTriggersCoalesce(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})

	started := make(chan struct{})
	release := make(chan struct{})

	f.source.EXPECT().FetchBatch(mock.Anything, 5).
		RunAndReturn(func(context.Context, int) ([]ports.RemoteRecord, error) {
			close(started)
			<-release

			return records("alpha"), nil
		}).Once()

	done := make(chan SyncResult)

	go func() {
		result, _ := f.engine.SyncOnce(context.Background())
		done <- result
	}()

	<-started

	skipped, err := f.engine.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, skipped.Skipped)
	assert.Equal(t, SyncSyncing, f.engine.Status().State)

	close(release)

	first := <-done
	assert.False(t, first.Skipped)
	assert.Equal(t, 1, first.Merged)
}

func TestSyncEngine_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newSyncFixture(t, SyncOptions{Interval: 10 * time.Millisecond, RunOnStart: true})

	var fetches atomic.Int32

	f.source.EXPECT().FetchBatch(mock.Anything, 5).
		RunAndReturn(func(context.Context, int) ([]ports.RemoteRecord, error) {
			fetches.Add(1)
			return records("alpha"), nil
		})

	f.engine.Start(context.Background())
	f.engine.Start(context.Background()) // second start is a no-op

	require.Eventually(t, func() bool { return fetches.Load() >= 3 }, time.Second, 5*time.Millisecond)

	f.engine.Stop()
	f.engine.Stop()

	stopped := fetches.Load()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, fetches.Load(), "no cycles after Stop")
	assert.Equal(t, 4, f.store.Len(), "repeated cycles never duplicate")
}

func TestSyncEngine_RunOnStartWithoutTicker(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newSyncFixture(t, SyncOptions{RunOnStart: true})

	var fetches atomic.Int32

	f.source.EXPECT().FetchBatch(mock.Anything, 5).
		RunAndReturn(func(context.Context, int) ([]ports.RemoteRecord, error) {
			fetches.Add(1)
			return nil, errors.New("offline")
		})

	f.engine.Start(context.Background())

	require.Eventually(t, func() bool { return fetches.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	f.engine.Stop()

	assert.Equal(t, int32(1), fetches.Load(), "a failure does not trigger a retry")
	assert.Equal(t, SyncFailed, f.engine.Status().LastResult)
}

func TestSyncEngine_StopWithoutStart(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})

	assert.NotPanics(t, f.engine.Stop)
}

func TestSyncEngine_Publish(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{PublishConcurrency: 2})

	f.source.EXPECT().PostRecord(mock.Anything, ports.RemoteRecord{Title: "ok", Body: "ok", Category: "A"}).Return(nil)
	f.source.EXPECT().PostRecord(mock.Anything, ports.RemoteRecord{Title: "bad", Body: "bad", Category: "B"}).
		Return(errors.New("500"))

	before := f.store.Quotes()

	sent := f.engine.Publish(context.Background(), qt("ok", "A"), qt("bad", "B"))

	assert.Equal(t, 1, sent)
	assert.Equal(t, before, f.store.Quotes(), "publishing never changes the store")
}

func TestSyncEngine_LoadMetadata(t *testing.T) {
	tests := []struct {
		name      string
		stored    *string
		wantSaved bool
		want      time.Time
	}{
		{name: "absent", stored: nil},
		{name: "corrupt", stored: ptr("yesterday")},
		{
			name:      "valid",
			stored:    ptr("2026-01-02T03:04:05.5Z"),
			wantSaved: true,
			want:      time.Date(2026, 1, 2, 3, 4, 5, 500_000_000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture(t, SyncOptions{})
			if tt.stored != nil {
				require.NoError(t, f.kv.Set(context.Background(), ports.KeyLastSync, []byte(*tt.stored)))
			}

			f.engine.LoadMetadata(context.Background())

			status := f.engine.Status()
			assert.Equal(t, tt.wantSaved, status.HasSynced)
			assert.True(t, tt.want.Equal(status.LastSyncTime))
			assert.Equal(t, SyncIdle, status.State)
		})
	}
}
