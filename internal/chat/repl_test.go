package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paperchat-ai/paperchat/internal/model"
)

func TestREPLQuitExits(t *testing.T) {
	m := &fakeModel{responses: []*model.Response{assistantText("unused")}}
	reg := newTestRegistry(t, echoProvider())
	orch := NewOrchestrator(m, reg, 10, zap.NewNop())

	var out strings.Builder
	repl := NewREPL(orch, reg, strings.NewReader("quit\n"), &out)

	require.NoError(t, repl.Run(context.Background()))
	assert.Contains(t, out.String(), "quit")
	assert.Empty(t, m.requests, "quit must not reach the model")
}

func TestREPLRunsQueryOnFreshConversation(t *testing.T) {
	m := &fakeModel{responses: []*model.Response{assistantText("42 papers found")}}
	reg := newTestRegistry(t, echoProvider())
	orch := NewOrchestrator(m, reg, 10, zap.NewNop())

	var out strings.Builder
	repl := NewREPL(orch, reg, strings.NewReader("how many papers?\nquit\n"), &out)

	require.NoError(t, repl.Run(context.Background()))
	assert.Contains(t, out.String(), "42 papers found")
	require.Len(t, m.requests, 1)
	assert.Len(t, m.requests[0].Messages, 1, "each query starts a fresh conversation")
}

func TestREPLEndOfInputExits(t *testing.T) {
	m := &fakeModel{}
	reg := newTestRegistry(t, echoProvider())
	orch := NewOrchestrator(m, reg, 10, zap.NewNop())

	var out strings.Builder
	repl := NewREPL(orch, reg, strings.NewReader(""), &out)
	require.NoError(t, repl.Run(context.Background()))
}

func TestREPLUnknownResource(t *testing.T) {
	m := &fakeModel{}
	reg := newTestRegistry(t, echoProvider())
	orch := NewOrchestrator(m, reg, 10, zap.NewNop())

	var out strings.Builder
	repl := NewREPL(orch, reg, strings.NewReader("@nothing\nquit\n"), &out)

	require.NoError(t, repl.Run(context.Background()))
	assert.Contains(t, out.String(), "not found")
	assert.Empty(t, m.requests, "resource reads bypass the model")
}

func TestREPLListsPromptsWhenEmpty(t *testing.T) {
	m := &fakeModel{}
	reg := newTestRegistry(t, echoProvider())
	orch := NewOrchestrator(m, reg, 10, zap.NewNop())

	var out strings.Builder
	repl := NewREPL(orch, reg, strings.NewReader("/prompts\nquit\n"), &out)

	require.NoError(t, repl.Run(context.Background()))
	assert.Contains(t, out.String(), "No prompts available")
}
