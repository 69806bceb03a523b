package failure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	var syntaxErr error = &json.SyntaxError{Offset: 3}

	tests := []struct {
		name string
		err  error
		want Reason
	}{
		{"not found sentinel", fmt.Errorf("chapter x: %w", ErrNotFound), NotFound},
		{"decode sentinel", fmt.Errorf("search: %w", ErrDecode), Decode},
		{"json syntax", fmt.Errorf("wrap: %w", syntaxErr), Decode},
		{"persistence", fmt.Errorf("save: %w", ErrUnavailable), PersistenceUnavailable},
		{"deadline", context.DeadlineExceeded, Network},
		{"plain", errors.New("connection reset"), Network},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("op", tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Reason)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, Classify("op", nil))
}

func TestClassify_KeepsExistingClassification(t *testing.T) {
	orig := New(NotFound, "cover", ErrNotFound)
	got := Classify("other", fmt.Errorf("wrapped: %w", orig))
	assert.Equal(t, NotFound, got.Reason)
	assert.Equal(t, "cover", got.Op)
	assert.True(t, Is(got, NotFound))
	assert.False(t, Is(got, Network))
}

func TestError_Message(t *testing.T) {
	err := New(Network, "search", errors.New("dial tcp: refused"))
	assert.Equal(t, "search: network error: dial tcp: refused", err.Error())
	assert.Equal(t, "page 3: stale result", New(Stale, "page 3", nil).Error())
}
