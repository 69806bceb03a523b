package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/tankobon/internal/failure"
)

func TestQueueIsFIFO(t *testing.T) {
	q := NewQueue[Action]()
	q.Push(NextPage{})
	q.Push(MoveCursor{Delta: -1})
	require.Equal(t, 2, q.Len())

	a, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, NextPage{}, a)

	a, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, MoveCursor{Delta: -1}, a)

	_, ok = q.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestQueueClear(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Push(2)
	q.Clear()
	assert.Equal(t, 0, q.Len())
}

func TestIsGlobal(t *testing.T) {
	for _, a := range []Action{Quit{}, NextTab{}, PreviousTab{}, GoToSearch{}} {
		assert.True(t, IsGlobal(a), "%T", a)
	}
	for _, a := range []Action{SubmitSearch{}, NextPage{}, ToggleOrder{}, OpenChapter{Index: 1}} {
		assert.False(t, IsGlobal(a), "%T", a)
	}
}

func TestGenerationsAreUnique(t *testing.T) {
	a := NextGeneration()
	b := NextGeneration()
	assert.NotEqual(t, a, b)
	assert.Greater(t, b, a)
}

func TestResultsExposeGenerationAndFailure(t *testing.T) {
	fail := failure.New(failure.Network, "page", nil)
	results := []Result{
		SearchLoaded{Gen: 7, Err: fail},
		CoverLoaded{Gen: 7, Err: fail},
		ChaptersLoaded{Gen: 7, Err: fail},
		ProgressLoaded{Gen: 7, Err: fail},
		PageSetLoaded{Gen: 7, Err: fail},
		PageLoaded{Gen: 7, Err: fail},
		ProgressSaved{Gen: 7, Err: fail},
	}
	for _, r := range results {
		assert.Equal(t, uint64(7), r.Generation(), "%T", r)
		assert.Same(t, fail, r.Failure(), "%T", r)
	}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "ctrl+s", Key{Name: "s", Mods: ModCtrl}.String())
	assert.Equal(t, "alt+shift+x", Key{Name: "x", Mods: ModAlt | ModShift}.String())
	assert.Equal(t, "q", Key{Name: "q"}.String())
}

func TestEmit(t *testing.T) {
	msg := Emit(NavigateBack{})()
	assert.Equal(t, NavigateBack{}, msg)
}
