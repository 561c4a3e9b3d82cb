package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"seo_enricher/config"
	"seo_enricher/generator"
	"seo_enricher/server"
)

type staticLLM string

func (s staticLLM) Complete(context.Context, generator.Prompt) (string, error) {
	return string(s), nil
}

func startServer(t *testing.T, llm generator.LLMClient) *httptest.Server {
	t.Helper()
	enricher, err := generator.NewEnricher(llm)
	require.NoError(t, err)
	srv, err := server.New(enricher, server.Options{})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEnrichCommand(t *testing.T) {
	ts := startServer(t, staticLLM(`{"foo.com":"Desc F.","bar.com":"Desc B."}`))

	dir := t.TempDir()
	in := filepath.Join(dir, "contacts.csv")
	outPath := filepath.Join(dir, "updated.csv")
	require.NoError(t, os.WriteFile(in, []byte("email,seo\na@foo.com,\nb@foo.com,existing\nc@bar.com,\n"), 0o600))

	stdout, err := runCLI(t, "enrich", "--in", in, "--out", outPath, "--endpoint", ts.URL)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Rows missing SEO descriptions: 2")
	assert.Contains(t, stdout, "Desc F.")

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "email,seo\na@foo.com,Desc F.\nb@foo.com,existing\nc@bar.com,Desc B.\n", string(got))
}

func TestEnrichCommand_EndpointFailure(t *testing.T) {
	ts := startServer(t, staticLLM("not json"))

	in := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, os.WriteFile(in, []byte("email,seo\na@foo.com,\n"), 0o600))

	_, err := runCLI(t, "enrich", "--in", in, "--out", filepath.Join(t.TempDir(), "x.csv"), "--endpoint", ts.URL)
	require.Error(t, err)
	assert.Equal(t, "Failed to generate SEO descriptions. Please try again.", err.Error())
}

func TestServeCommand_RequiresAPIKey(t *testing.T) {
	t.Setenv(config.DefaultAPIKeyEnv, "")

	_, err := runCLI(t, "serve", "--addr", "127.0.0.1:0")
	require.Error(t, err)

	var cfgErr *config.Error
	assert.True(t, errors.As(err, &cfgErr))
}

func TestBuildLLM(t *testing.T) {
	logger = zap.NewNop()
	cfg := config.Default()
	cfg.LLM.APIKey = "sk-test"

	llm, err := buildLLM(cfg, false)
	require.NoError(t, err)
	assert.IsType(t, &generator.OpenAILLM{}, llm)

	llm, err = buildLLM(cfg, true)
	require.NoError(t, err)
	assert.IsType(t, generator.MockLLM{}, llm)

	cfg.LLM.Provider = "acme"
	_, err = buildLLM(cfg, false)
	require.Error(t, err)
}
