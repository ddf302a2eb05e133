package store

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/link"
	"github.com/ayusman/mudra/internal/log"
)

func TestCommandRepository_CreateAndGet(t *testing.T) {
	repo := newTestStore(t).Commands()

	c := &Command{
		ID:       "cmd-1",
		Endpoint: "/led/index/on",
		Outcome:  string(link.OutcomeDelivered),
		Attempts: 1,
		Duration: 12 * time.Millisecond,
	}
	require.NoError(t, repo.Create(c))
	assert.False(t, c.CreatedAt.IsZero(), "CreatedAt should be set after create")

	got, err := repo.GetByID("cmd-1")
	require.NoError(t, err)
	assert.Equal(t, "/led/index/on", got.Endpoint)
	assert.Equal(t, "delivered", got.Outcome)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, 12*time.Millisecond, got.Duration)

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommandRepository_RejectsUnknownOutcome(t *testing.T) {
	repo := newTestStore(t).Commands()
	err := repo.Create(&Command{ID: "x", Endpoint: "/led/all/off", Outcome: "maybe"})
	assert.Error(t, err)
}

func TestCommandRepository_ListNewestFirst(t *testing.T) {
	repo := newTestStore(t).Commands()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(&Command{
			ID:        fmt.Sprintf("cmd-%d", i),
			Endpoint:  "/led/thumb/on",
			Outcome:   "delivered",
			Attempts:  1,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	list, err := repo.List(3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "cmd-4", list[0].ID)
	assert.Equal(t, "cmd-3", list[1].ID)
	assert.Equal(t, "cmd-2", list[2].ID)

	all, err := repo.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestCommandRepository_RecordDelivery(t *testing.T) {
	repo := newTestStore(t).Commands()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var rec link.Recorder = repo
	rec.RecordDelivery(link.Delivery{
		ID:         "d-1",
		Path:       "/led/ring/off",
		Attempts:   2,
		Outcome:    link.OutcomeTimeout,
		Err:        errors.New("i/o timeout"),
		StartedAt:  start,
		FinishedAt: start.Add(2100 * time.Millisecond),
	})
	rec.RecordDelivery(link.Delivery{
		ID:         "d-2",
		Path:       "/led/all/off",
		Attempts:   1,
		Outcome:    link.OutcomeDelivered,
		StartedAt:  start,
		FinishedAt: start.Add(5 * time.Millisecond),
	})

	got, err := repo.GetByID("d-1")
	require.NoError(t, err)
	assert.Equal(t, "timeout", got.Outcome)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, "i/o timeout", got.Error)
	assert.Equal(t, 2100*time.Millisecond, got.Duration)

	counts, err := repo.CountByOutcome()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"timeout": 1, "delivered": 1}, counts)
}

func TestCommandRepository_ConcurrentRecords(t *testing.T) {
	repo := newTestStore(t).Commands()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			now := time.Now()
			repo.RecordDelivery(link.Delivery{
				ID:         fmt.Sprintf("c-%d", i),
				Path:       "/led/index/on",
				Attempts:   1,
				Outcome:    link.OutcomeDelivered,
				StartedAt:  now,
				FinishedAt: now,
			})
		}(i)
	}
	wg.Wait()

	list, err := repo.List(100)
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

func TestLinkEventRepository(t *testing.T) {
	repo := newTestStore(t).LinkEvents()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var onChange link.TransitionFunc = repo.RecordTransition
	onChange(true, at)
	onChange(false, at.Add(time.Minute))

	list, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].Reachable)
	assert.True(t, list[1].Reachable)
	assert.Greater(t, list[0].ID, list[1].ID)
	assert.True(t, list[1].CreatedAt.Equal(at))
}

func TestSettingRepository(t *testing.T) {
	repo := newTestStore(t).Settings()

	_, err := repo.Get(SettingEnabled)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, repo.GetBool(SettingEnabled, true), "missing key falls back to default")

	require.NoError(t, repo.SetBool(SettingEnabled, false))
	assert.False(t, repo.GetBool(SettingEnabled, true))

	require.NoError(t, repo.SetBool(SettingEnabled, true))
	assert.True(t, repo.GetBool(SettingEnabled, false))

	require.NoError(t, repo.Set(SettingEnabled, "garbage"))
	assert.False(t, repo.GetBool(SettingEnabled, false))
}

func TestRecorders_LogStorageErrors(t *testing.T) {
	s := newTestStore(t)
	var buf bytes.Buffer
	s.SetLogger(log.New(&buf, "warn"))

	t.Run("command", func(t *testing.T) {
		buf.Reset()
		s.Commands().RecordDelivery(link.Delivery{
			ID:      "bad-outcome",
			Path:    "/led/index/on",
			Outcome: link.Outcome("exploded"),
		})

		assert.Contains(t, buf.String(), "failed to record command")
		assert.Contains(t, buf.String(), "bad-outcome")
		_, err := s.Commands().GetByID("bad-outcome")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("link event", func(t *testing.T) {
		buf.Reset()
		_, err := s.DB().Exec("DROP TABLE link_events")
		require.NoError(t, err)

		s.LinkEvents().RecordTransition(true, time.Now())

		assert.Contains(t, buf.String(), "failed to record link event")
	})
}
