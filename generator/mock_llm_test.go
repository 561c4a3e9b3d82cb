package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLLM_ReturnsParsableMapping(t *testing.T) {
	raw, err := MockLLM{}.Complete(context.Background(), BuildDescriptionPrompt([]string{"foo.com", "bar.com"}))
	require.NoError(t, err)

	got, err := ParseMapping(raw)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got["foo.com"], "foo.com")
}
