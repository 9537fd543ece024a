package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errProvider = errors.New("provider down")

func newTestExecutor(t *testing.T, tool *stubTool) *Executor {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(tool))
	return NewExecutor(r)
}

func TestExecutorSuccessAppliesDefaults(t *testing.T) {
	tool := &stubTool{def: searchDef()}
	ex := newTestExecutor(t, tool)

	res, err := ex.Execute(context.Background(), Call{ID: "call_1", Name: "youtube_search", Args: `{"query":"go"}`})
	require.NoError(t, err)
	assert.False(t, res.Degraded())
	assert.Equal(t, "call_1", res.CallID)
	assert.Equal(t, "youtube_search", res.Name)
	assert.JSONEq(t, `{"status":"ok"}`, res.Content())

	assert.Equal(t, 1, tool.calls)
	assert.Equal(t, int64(5), tool.lastArg["maxResults"])
	assert.Equal(t, "go", tool.lastArg["query"])
}

func TestExecutorDegradedResults(t *testing.T) {
	tests := []struct {
		name    string
		call    Call
		wantErr error
	}{
		{"unknown tool", Call{ID: "c", Name: "weather", Args: `{}`}, ErrUnknownTool},
		{"malformed json", Call{ID: "c", Name: "youtube_search", Args: `{"query":`}, ErrInvalidArgument},
		{"not an object", Call{ID: "c", Name: "youtube_search", Args: `["go"]`}, ErrInvalidArgument},
		{"missing required", Call{ID: "c", Name: "youtube_search", Args: `{"maxResults":3}`}, ErrInvalidArgument},
		{"empty args", Call{ID: "c", Name: "youtube_search", Args: ``}, ErrInvalidArgument},
		{"wrong type", Call{ID: "c", Name: "youtube_search", Args: `{"query":42}`}, ErrInvalidArgument},
		{"fractional integer", Call{ID: "c", Name: "youtube_search", Args: `{"query":"go","maxResults":2.5}`}, ErrInvalidArgument},
		{"integer overflow", Call{ID: "c", Name: "youtube_search", Args: `{"query":"go","maxResults":1e20}`}, ErrInvalidArgument},
		{"max int64 rounds up", Call{ID: "c", Name: "youtube_search", Args: `{"query":"go","maxResults":9223372036854775807}`}, ErrInvalidArgument},
		{"negative overflow", Call{ID: "c", Name: "youtube_search", Args: `{"query":"go","maxResults":-1e19}`}, ErrInvalidArgument},
		{"unknown argument", Call{ID: "c", Name: "youtube_search", Args: `{"query":"go","lang":"en"}`}, ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &stubTool{def: searchDef()}
			ex := newTestExecutor(t, tool)

			res, err := ex.Execute(context.Background(), tt.call)
			require.NoError(t, err)
			assert.True(t, res.Degraded())
			assert.ErrorIs(t, res.Err, tt.wantErr)
			assert.Contains(t, res.Content(), `"error"`)
			assert.Equal(t, 0, tool.calls, "handler must not run for invalid calls")
		})
	}
}

func TestExecutorMarkdownWrappedArgs(t *testing.T) {
	tool := &stubTool{def: searchDef()}
	ex := newTestExecutor(t, tool)

	res, err := ex.Execute(context.Background(), Call{ID: "c", Name: "youtube_search", Args: "```json\n{\"query\":\"jazz\",\"maxResults\":2}\n```"})
	require.NoError(t, err)
	assert.False(t, res.Degraded())
	assert.Equal(t, int64(2), tool.lastArg["maxResults"])
}

func TestExecutorHandlerErrors(t *testing.T) {
	t.Run("invalid argument from handler degrades", func(t *testing.T) {
		tool := &stubTool{def: searchDef(), exec: func(context.Context, Args) (any, error) {
			return nil, fmt.Errorf("%w: query is blank", ErrInvalidArgument)
		}}
		ex := newTestExecutor(t, tool)

		res, err := ex.Execute(context.Background(), Call{ID: "c", Name: "youtube_search", Args: `{"query":" "}`})
		require.NoError(t, err)
		assert.True(t, res.Degraded())
		assert.JSONEq(t, `{"error":"invalid argument: query is blank"}`, res.Content())
	})

	t.Run("provider error aborts", func(t *testing.T) {
		tool := &stubTool{def: searchDef(), exec: func(context.Context, Args) (any, error) {
			return nil, errProvider
		}}
		ex := newTestExecutor(t, tool)

		_, err := ex.Execute(context.Background(), Call{ID: "c", Name: "youtube_search", Args: `{"query":"go"}`})
		assert.ErrorIs(t, err, errProvider)
	})

	t.Run("panic becomes error", func(t *testing.T) {
		tool := &stubTool{def: searchDef(), exec: func(context.Context, Args) (any, error) {
			panic("boom")
		}}
		ex := newTestExecutor(t, tool)

		_, err := ex.Execute(context.Background(), Call{ID: "c", Name: "youtube_search", Args: `{"query":"go"}`})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}
