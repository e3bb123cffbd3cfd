package hostfuncs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedBuffer_Write(t *testing.T) {
	tests := []struct {
		name        string
		limit       int
		writes      []string
		want        string
		wantDropped int
	}{
		{name: "within limit", limit: 100, writes: []string{"hello"}, want: "hello"},
		{name: "exactly at limit", limit: 5, writes: []string{"hello"}, want: "hello"},
		{name: "single write over limit", limit: 8, writes: []string{"magnolia job"}, want: "magnolia", wantDropped: 4},
		{name: "limit crossed across writes", limit: 6, writes: []string{"abcd", "efgh", "ijkl"}, want: "abcdef", wantDropped: 6},
		{name: "zero limit", limit: 0, writes: []string{"x"}, want: "", wantDropped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := NewBoundedBuffer(tt.limit)
			for _, w := range tt.writes {
				n, err := buf.Write([]byte(w))
				require.NoError(t, err)
				assert.Equal(t, len(w), n, "writes always report full length")
			}
			assert.Equal(t, tt.want, buf.String())
			assert.Equal(t, tt.wantDropped, buf.Dropped)
			assert.Equal(t, tt.wantDropped > 0, buf.Truncated)
		})
	}
}

func TestBoundedBuffer_Fprintf(t *testing.T) {
	buf := NewBoundedBuffer(DefaultMaxOutputSize)
	_, err := fmt.Fprintf(buf, "%d args\n", 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("3 args\n"), buf.Bytes())
	assert.Equal(t, 7, buf.Len())
}

func TestBoundedBuffer_Reset(t *testing.T) {
	buf := NewBoundedBuffer(2)
	_, _ = buf.Write([]byte("abc"))
	require.True(t, buf.Truncated)

	buf.Reset()
	assert.Zero(t, buf.Len())
	assert.False(t, buf.Truncated)
	assert.Zero(t, buf.Dropped)
}
