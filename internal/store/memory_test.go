package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
	"github.com/robalobadob/wordle/apps/go-engine/internal/words"
)

func newTestGame(t *testing.T, attempts int) *game.Game {
	t.Helper()

	gm, err := game.NewDefault(
		game.WithSolution("stuhl"),
		game.WithAttempts(attempts),
		game.WithDictionary(words.AcceptAll),
	)
	require.NoError(t, err)
	return gm
}

func input(in game.Input) Transition {
	return func(g *game.Game) (*game.Game, error) { return g.HandleInput(in) }
}

func Test_Create_Then_Get_Returns_Same_Game(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	s, err := st.Create(ctx, newTestGame(t, 6))
	require.NoError(t, err)
	assert.Len(t, s.ID, 16)

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s.Game, got.Game)
	assert.Equal(t, 1, st.Len())

	_, err = st.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_Apply_Replaces_Game_On_Success_And_Keeps_It_On_Failure(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s, err := st.Create(ctx, newTestGame(t, 6))
	require.NoError(t, err)

	after, err := st.Apply(ctx, s.ID, input(game.CharInput("s")))
	require.NoError(t, err)
	assert.Equal(t, 1, after.Game.Grid().CurrentColumn())
	assert.Empty(t, after.Message)

	failed, err := st.Apply(ctx, s.ID, input(game.CharInput("?")))
	require.Error(t, err)
	assert.Same(t, after.Game, failed.Game)
	assert.Equal(t, "not allowed character: '?'", failed.Message)

	ok, err := st.Apply(ctx, s.ID, input(game.DeleteInput()))
	require.NoError(t, err)
	assert.Empty(t, ok.Message)
	assert.Equal(t, 0, ok.Game.Grid().CurrentColumn())

	_, err = st.Apply(ctx, "missing", input(game.DeleteInput()))
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_Apply_Serializes_Concurrent_Inputs(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s, err := st.Create(ctx, newTestGame(t, 6))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = st.Apply(ctx, s.ID, input(game.CharInput("a")))
		}()
	}
	wg.Wait()

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	// Exactly five inserts fit; the other fifteen fail with ErrRowDone.
	assert.Equal(t, 5, got.Game.Grid().CurrentColumn())
	assert.Equal(t, game.ErrRowDone.Error(), got.Message)
}

func Test_Apply_Honours_Cancelled_Context(t *testing.T) {
	st := NewMemoryStore()
	s, err := st.Create(context.Background(), newTestGame(t, 6))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = st.Apply(ctx, s.ID, input(game.CharInput("a")))
	require.ErrorIs(t, err, context.Canceled)
}

func Test_Delete_And_Prune_Remove_Sessions(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	st := &memory{sessions: map[string]*Session{}, now: func() time.Time { return clock }}

	old, err := st.Create(ctx, newTestGame(t, 1))
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	fresh, err := st.Create(ctx, newTestGame(t, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, st.Prune(ctx, clock.Add(-30*time.Minute)))
	_, err = st.Get(ctx, old.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Delete(ctx, fresh.ID))
	require.ErrorIs(t, st.Delete(ctx, fresh.ID), ErrNotFound)
	assert.Equal(t, 0, st.Len())
}

func Test_Session_View_Exposes_Affordances_And_Message(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	s, err := m.Create(context.Background(), newTestGame(t, 6))
	require.NoError(t, err)

	v := s.View()
	assert.Equal(t, s.ID, v.GameID)
	assert.True(t, v.CanAcceptInput)
	assert.False(t, v.CanDelete)
	assert.False(t, v.CanConfirm)
	assert.Equal(t, game.AvailabilityUnknown, v.Keyboard["A"])
	assert.Empty(t, v.Game.Solution)

	s, err = m.Apply(context.Background(), s.ID, input(game.DeleteInput()))
	require.Error(t, err)
	assert.Equal(t, game.ErrNoActiveCharacter.Error(), s.View().Message)
}

func Test_CommitHook_Sees_Every_Apply_In_Write_Order(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var seen []int
	st := NewMemoryStore(WithCommitHook(func(s Session) {
		seen = append(seen, s.Game.Grid().CurrentColumn())
	}))
	s, err := st.Create(ctx, newTestGame(t, 6))
	require.NoError(t, err)
	assert.Empty(t, seen, "create is not a commit")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = st.Apply(ctx, s.ID, input(game.CharInput("a")))
		}()
	}
	wg.Wait()

	// The hook runs under the store lock, so seen needs no locking and the
	// last observed session is the stored one.
	require.Len(t, seen, 8)
	assert.IsNonDecreasing(t, seen)
	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Game.Grid().CurrentColumn(), seen[len(seen)-1])
}

func Test_Publish_Passes_Current_Session_To_Hook(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var got []Session
	st := NewMemoryStore(WithCommitHook(func(s Session) { got = append(got, s) }))
	s, err := st.Create(ctx, newTestGame(t, 6))
	require.NoError(t, err)

	require.NoError(t, st.Publish(ctx, s.ID))
	require.Len(t, got, 1)
	assert.Equal(t, s.ID, got[0].ID)
	assert.Same(t, s.Game, got[0].Game)

	require.ErrorIs(t, st.Publish(ctx, "missing"), ErrNotFound)
	assert.Len(t, got, 1)
}
