package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigMissingError(t *testing.T) {
	err := NewConfigMissing("GEMINI_API_KEY")
	assert.Equal(t, "config missing: GEMINI_API_KEY is not configured", err.Error())
	assert.True(t, IsConfigMissing(fmt.Errorf("extract: %w", err)))
	assert.False(t, IsUpstream(err))
	assert.False(t, IsNoData(err))
}

func TestUpstreamError(t *testing.T) {
	tests := []struct {
		name string
		err  *UpstreamError
		want string
	}{
		{
			name: "message only",
			err:  NewUpstream("empty reply", nil),
			want: "upstream error: empty reply",
		},
		{
			name: "with status",
			err:  NewUpstreamStatus(503, "unavailable"),
			want: "upstream error: unavailable (status 503)",
		},
		{
			name: "with wrapped error",
			err:  NewUpstream("request failed", io.ErrUnexpectedEOF),
			want: "upstream error: request failed: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, IsUpstream(tt.err))
		})
	}
}

func TestUpstreamError_Unwrap(t *testing.T) {
	err := fmt.Errorf("gemini: %w", NewUpstream("request failed", io.ErrUnexpectedEOF))
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.True(t, IsUpstream(err))
}

func TestNoDataError(t *testing.T) {
	err := NewNoData("analyze a complaint first")
	assert.Equal(t, "no data: analyze a complaint first", err.Error())
	assert.True(t, IsNoData(err))
	assert.False(t, IsConfigMissing(err))
}

func TestIsHelpers_Nil(t *testing.T) {
	assert.False(t, IsConfigMissing(nil))
	assert.False(t, IsUpstream(nil))
	assert.False(t, IsNoData(nil))
}
