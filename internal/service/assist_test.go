package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"inkwell/internal/domain"
	"inkwell/internal/llm"
)

type stubCompleter struct {
	result string
	err    error

	gotAction  llm.Action
	gotContent string
}

func (c *stubCompleter) Complete(_ context.Context, action llm.Action, content, language, tone string) (string, error) {
	c.gotAction = action
	c.gotContent = content
	return c.result, c.err
}

func newAssistService(t *testing.T, env *testEnv, completer Completer) *AssistService {
	t.Helper()
	return NewAssistService(completer, env.suggestions, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAssistRequiresContent(t *testing.T) {
	env := newTestEnv(t)
	svc := newAssistService(t, env, &stubCompleter{})

	_, err := svc.Assist(context.Background(), &AssistRequest{Action: llm.ActionImprove})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestAssistRejectsUnknownAction(t *testing.T) {
	env := newTestEnv(t)
	svc := newAssistService(t, env, &stubCompleter{})

	_, err := svc.Assist(context.Background(), &AssistRequest{Action: "embellish", Content: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestAssistDefaultsToContinue(t *testing.T) {
	env := newTestEnv(t)
	completer := &stubCompleter{result: "...and then"}
	svc := newAssistService(t, env, completer)

	result, err := svc.Assist(context.Background(), &AssistRequest{Content: "once upon a time"})
	if err != nil {
		t.Fatalf("assist: %v", err)
	}
	if result != "...and then" {
		t.Errorf("result = %q, want the completer output", result)
	}
	if completer.gotAction != llm.ActionContinue {
		t.Errorf("action = %q, empty action must default to continue", completer.gotAction)
	}
}

func TestAssistRecordsSuggestionForNote(t *testing.T) {
	env := newTestEnv(t)
	svc := newAssistService(t, env, &stubCompleter{result: "tidied up"})
	ctx := context.Background()

	note := env.mustCreateNote(t, &CreateNoteRequest{Title: "draft"})

	if _, err := svc.Assist(ctx, &AssistRequest{Action: llm.ActionImprove, Content: "raw", NoteID: note.ID}); err != nil {
		t.Fatalf("assist: %v", err)
	}

	suggestions, err := env.notes.NoteSuggestions(ctx, note.ID)
	if err != nil {
		t.Fatalf("note suggestions: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(suggestions))
	}
	if suggestions[0].Type != "improve" || suggestions[0].Content != "tidied up" {
		t.Errorf("suggestion = %+v, want improve/tidied up", suggestions[0])
	}
}

func TestAssistSurvivesFailedSuggestionRecord(t *testing.T) {
	env := newTestEnv(t)
	svc := newAssistService(t, env, &stubCompleter{result: "still useful"})

	// The named note does not exist, so the record step fails; the
	// assist result must come back anyway.
	result, err := svc.Assist(context.Background(), &AssistRequest{Content: "x", NoteID: "missing"})
	if err != nil {
		t.Fatalf("assist: %v", err)
	}
	if result != "still useful" {
		t.Errorf("result = %q, want the completer output", result)
	}
}

func TestAssistPropagatesUpstreamError(t *testing.T) {
	env := newTestEnv(t)
	svc := newAssistService(t, env, &stubCompleter{err: domain.ErrUpstream})

	_, err := svc.Assist(context.Background(), &AssistRequest{Content: "x"})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}
