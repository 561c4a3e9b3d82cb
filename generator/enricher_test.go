package generator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeLLM records prompts and replies with a fixed answer.
type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []Prompt
}

func (f *fakeLLM) Complete(_ context.Context, p Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	return f.reply, f.err
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func TestNewEnricher_RequiresLLM(t *testing.T) {
	_, err := NewEnricher(nil)
	require.Error(t, err)
}

func TestEnricher_Describe(t *testing.T) {
	ctx := context.Background()

	t.Run("empty batch", func(t *testing.T) {
		llm := &fakeLLM{}
		e, err := NewEnricher(llm)
		require.NoError(t, err)

		_, err = e.Describe(ctx, nil)
		assert.ErrorIs(t, err, ErrNoRows)
		_, err = e.Describe(ctx, []Record{})
		assert.ErrorIs(t, err, ErrNoRows)
		assert.Equal(t, 0, llm.calls())
	})

	t.Run("joins every row's domain into one prompt", func(t *testing.T) {
		llm := &fakeLLM{reply: `{"foo.com":"Desc F.","bar.com":"Desc B."}`}
		e, err := NewEnricher(llm)
		require.NoError(t, err)

		got, err := e.Describe(ctx, []Record{
			{"email": "a@foo.com", "seo": ""},
			{"email": "c@bar.com"},
			{"email": "d@foo.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, Mapping{"foo.com": "Desc F.", "bar.com": "Desc B."}, got)

		require.Equal(t, 1, llm.calls())
		assert.Equal(t,
			"Generate one concise SEO description (1-2 sentences) for each domain below. Return as JSON key-value pairs: foo.com, bar.com, foo.com",
			llm.prompts[0].User)
		assert.Equal(t, []string{"foo.com", "bar.com", "foo.com"}, llm.prompts[0].Domains)
	})

	t.Run("rows without domain skip the provider", func(t *testing.T) {
		llm := &fakeLLM{}
		e, err := NewEnricher(llm)
		require.NoError(t, err)

		got, err := e.Describe(ctx, []Record{{"email": "nobody"}, {"email": 42}, {"name": "x"}})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, 0, llm.calls())
	})

	t.Run("provider failure", func(t *testing.T) {
		cause := errors.New("connection refused")
		e, err := NewEnricher(&fakeLLM{err: cause})
		require.NoError(t, err)

		_, err = e.Describe(ctx, []Record{{"email": "a@x.com"}})
		require.Error(t, err)
		assert.True(t, IsGenerationFailed(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("non JSON output", func(t *testing.T) {
		e, err := NewEnricher(&fakeLLM{reply: "Sure! Here are your descriptions."})
		require.NoError(t, err)

		_, err = e.Describe(ctx, []Record{{"email": "a@x.com"}})
		assert.True(t, IsGenerationFailed(err))
	})

	t.Run("empty output is an empty mapping", func(t *testing.T) {
		e, err := NewEnricher(&fakeLLM{reply: ""})
		require.NoError(t, err)

		got, err := e.Describe(ctx, []Record{{"email": "a@x.com"}})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestEnricher_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	llm := &fakeLLM{reply: `{"x.com":"secret description"}`}

	quiet, err := NewEnricher(llm, WithLogger(zap.New(core)))
	require.NoError(t, err)
	_, err = quiet.Describe(context.Background(), []Record{{"email": "a@x.com"}})
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage("provider response").Len())

	verbose, err := NewEnricher(llm, WithLogger(zap.New(core)), WithPayloadLogging(true))
	require.NoError(t, err)
	_, err = verbose.Describe(context.Background(), []Record{{"email": "a@x.com"}})
	require.NoError(t, err)

	entries := logs.FilterMessage("provider response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, `{"x.com":"secret description"}`, entries[0].ContextMap()["response"])
}

func TestEnricher_Observer(t *testing.T) {
	var outcomes []string
	observe := func(outcome string, _ time.Duration) { outcomes = append(outcomes, outcome) }

	ok, err := NewEnricher(&fakeLLM{reply: "{}"}, WithObserver(observe))
	require.NoError(t, err)
	_, err = ok.Describe(context.Background(), []Record{{"email": "a@x.com"}})
	require.NoError(t, err)

	failing, err := NewEnricher(&fakeLLM{err: errors.New("boom")}, WithObserver(observe))
	require.NoError(t, err)
	_, _ = failing.Describe(context.Background(), []Record{{"email": "a@x.com"}})

	assert.Equal(t, []string{"ok", "error"}, outcomes)
}
