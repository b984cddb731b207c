package model

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodo_Merge(t *testing.T) {
	existing := Todo{
		ID:        7,
		Title:     StringPtr("A"),
		Completed: false,
		Order:     IntPtr(1),
		URL:       "http://localhost:8082/todos/7",
	}

	tests := []struct {
		name  string
		patch TodoPatch
		want  Todo
	}{
		{
			name:  "only completed",
			patch: TodoPatch{Completed: BoolPtr(true)},
			want: Todo{
				ID: 7, Title: StringPtr("A"), Completed: true, Order: IntPtr(1),
				URL: "http://localhost:8082/todos/7",
			},
		},
		{
			name:  "title and order",
			patch: TodoPatch{Title: StringPtr("B"), Order: IntPtr(5)},
			want: Todo{
				ID: 7, Title: StringPtr("B"), Completed: false, Order: IntPtr(5),
				URL: "http://localhost:8082/todos/7",
			},
		},
		{
			name: "id and url are ignored",
			patch: TodoPatch{
				ID:        func() *int64 { v := int64(99); return &v }(),
				URL:       StringPtr("http://evil/todos/99"),
				Completed: BoolPtr(true),
			},
			want: Todo{
				ID: 7, Title: StringPtr("A"), Completed: true, Order: IntPtr(1),
				URL: "http://localhost:8082/todos/7",
			},
		},
		{
			name:  "empty patch",
			patch: TodoPatch{},
			want:  existing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, existing.Merge(tt.patch))
		})
	}
}

func TestTodo_MergeDoesNotAlias(t *testing.T) {
	title := "original"
	existing := Todo{ID: 1, Title: &title}
	patchTitle := "patched"

	merged := existing.Merge(TodoPatch{Title: &patchTitle})
	patchTitle = "changed after merge"

	assert.Equal(t, "patched", *merged.Title)
	assert.Equal(t, "original", *existing.Title)
}

func TestTodo_DecodeDefaults(t *testing.T) {
	var todo Todo
	require.NoError(t, json.Unmarshal([]byte(`{"title":"buy milk"}`), &todo))

	assert.Zero(t, todo.ID)
	assert.Equal(t, "buy milk", *todo.Title)
	assert.False(t, todo.Completed)
	assert.Nil(t, todo.Order)
	assert.Empty(t, todo.URL)
}

func TestTodoPatch_Empty(t *testing.T) {
	assert.True(t, TodoPatch{}.Empty())
	assert.True(t, TodoPatch{URL: StringPtr("x")}.Empty())
	assert.False(t, TodoPatch{Order: IntPtr(0)}.Empty())
}

func mustNext(t *testing.T, a *IDAllocator) int64 {
	t.Helper()
	id, err := a.Next()
	require.NoError(t, err)
	return id
}

func TestIDAllocator(t *testing.T) {
	a := NewIDAllocator()

	assert.Equal(t, int64(1), mustNext(t, a))
	assert.Equal(t, int64(2), mustNext(t, a))

	a.AdvanceTo(10)
	assert.Equal(t, int64(11), mustNext(t, a))

	// меньший кандидат отметку не двигает
	a.AdvanceTo(3)
	assert.Equal(t, int64(11), a.Mark())
	assert.Equal(t, int64(12), mustNext(t, a))
}

func TestIDAllocator_Exhausted(t *testing.T) {
	tests := []struct {
		name    string
		advance int64
	}{
		{name: "mark at max id", advance: MaxID},
		{name: "mark above max id", advance: math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewIDAllocator()
			a.AdvanceTo(tt.advance)

			for i := 0; i < 3; i++ {
				id, err := a.Next()
				assert.ErrorIs(t, err, ErrorIDsExhausted)
				assert.Zero(t, id)
			}
			// отметка не переполняется и не уменьшается
			assert.Equal(t, tt.advance, a.Mark())
		})
	}
}

func TestIDAllocator_LastID(t *testing.T) {
	a := NewIDAllocator()
	a.AdvanceTo(MaxID - 1)

	assert.Equal(t, MaxID, mustNext(t, a))
	_, err := a.Next()
	assert.ErrorIs(t, err, ErrorIDsExhausted)
}

func TestIDAllocator_Concurrent(t *testing.T) {
	a := NewIDAllocator()

	const goroutines = 50
	const perGoroutine = 200

	var wg sync.WaitGroup
	ids := make(chan int64, goroutines*perGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				if j%50 == 0 {
					a.AdvanceTo(int64(idx * j))
				}
				id, err := a.Next()
				if assert.NoError(t, err) {
					ids <- id
				}
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, goroutines*perGoroutine)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "id %d allocated twice", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}
