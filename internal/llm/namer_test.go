package llm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kestrelcrawl/intentcrawl/internal/llm"
)

type stubGenerateClient struct {
	resp llm.Response
	err  error
}

func (s stubGenerateClient) Generate(_ context.Context, _ string, _ llm.Tier, _ float64, _ int, _ time.Duration) (llm.Response, error) {
	return s.resp, s.err
}

func TestNamerReturnsTrimmedSlugOnSuccess(t *testing.T) {
	client := stubGenerateClient{resp: llm.Response{Success: true, Content: "  \"admissions overview\"  "}}
	namer := llm.NewNamer(client, time.Second)

	name, ok := namer.Name(context.Background(), "https://ex.com/a", []byte("Apply for admission today."))
	require.True(t, ok)
	require.Equal(t, "admissions overview", name)
}

func TestNamerFallsBackOnFailure(t *testing.T) {
	client := stubGenerateClient{resp: llm.Response{Success: false, Error: "boom"}}
	namer := llm.NewNamer(client, time.Second)

	_, ok := namer.Name(context.Background(), "https://ex.com/a", []byte("content"))
	require.False(t, ok)
}

func TestNamerFallsBackOnMultilineResponse(t *testing.T) {
	client := stubGenerateClient{resp: llm.Response{Success: true, Content: "line one\nline two"}}
	namer := llm.NewNamer(client, time.Second)

	_, ok := namer.Name(context.Background(), "https://ex.com/a", []byte("content"))
	require.False(t, ok)
}

func TestNamerFallsBackOnNilClient(t *testing.T) {
	namer := llm.NewNamer(nil, time.Second)

	_, ok := namer.Name(context.Background(), "https://ex.com/a", []byte("content"))
	require.False(t, ok)
}
