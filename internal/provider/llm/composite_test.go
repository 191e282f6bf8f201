package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPublishedURL_PrefersStructuredTerminalPayload(t *testing.T) {
	p := &Provider{lastTerminalResult: `{"article_id":"42","article_url":"https://example.com/p/42","status":"published"}`}

	url, err := p.GetPublishedURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/p/42", url)
}

func TestGetCurrentPostID_PrefersStructuredTerminalPayload(t *testing.T) {
	p := &Provider{lastTerminalResult: `{"article_id":"42","article_url":"https://example.com/p/42","status":"published"}`}

	id, err := p.GetCurrentPostID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestTokenUsage_ReportsRecordedCount(t *testing.T) {
	p := New(Config{})
	assert.Equal(t, 0, p.TokenUsage())
	p.tokensUsed = 150
	assert.Equal(t, 150, p.TokenUsage())
}

func TestName_IsLLM(t *testing.T) {
	p := New(Config{})
	assert.Equal(t, "llm", p.Name())
}
