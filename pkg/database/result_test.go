package database

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_Accessors(t *testing.T) {
	r := NewRow([]string{"id", "name", "extra"}, []any{int64(1), "ana"})

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"id", "name"}, r.Columns())
	assert.Equal(t, []any{int64(1), "ana"}, r.Values())
	assert.Equal(t, map[string]any{"id": int64(1), "name": "ana"}, r.Map())

	v, ok := r.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "ana", v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, r.Value("missing"))

	cols := r.Columns()
	cols[0] = "changed"
	assert.Equal(t, "id", r.Columns()[0])
}

func TestFlat(t *testing.T) {
	rows := []Row{
		NewRow([]string{"id", "name"}, []any{1, "a"}),
		NewRow([]string{"id", "name"}, []any{2, "b"}),
		NewRow([]string{"id"}, []any{3}),
	}

	assert.Equal(t, []any{1, "a", 2, "b", 3}, Flat(rows))
	assert.Equal(t, []any{1, 2, 3}, Flat(rows, "id"))
	assert.Equal(t, []any{"a", 1, "b", 2, nil, 3}, Flat(rows, "name", "id"))
	assert.Empty(t, Flat(nil, "id"))
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		in   any
		want int64
	}{
		{int64(7), 7},
		{int32(7), 7},
		{7, 7},
		{uint64(7), 7},
		{float64(7), 7},
		{[]byte("42"), 42},
		{"42", 42},
		{nil, 0},
	}
	for _, tt := range tests {
		got, err := toInt64(tt.in)
		require.NoError(t, err, "%T", tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := toInt64(uint64(math.MaxUint64))
	assert.Error(t, err)
	_, err = toInt64(true)
	assert.Error(t, err)
	_, err = toInt64("abc")
	assert.Error(t, err)
}
