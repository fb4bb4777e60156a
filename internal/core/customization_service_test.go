package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevare.io/sitegen/internal/logger"
	"elevare.io/sitegen/internal/store"
	"elevare.io/sitegen/internal/upstream"
)

type stubCompleter struct {
	reply   string
	err     error
	history []*genai.Content
	prompt  string
	calls   int
}

func (s *stubCompleter) GetCompletion(_ context.Context, _ string, history []*genai.Content, userPrompt string) (string, error) {
	s.calls++
	s.history = history
	s.prompt = userPrompt
	return s.reply, s.err
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCustomizeAppliesChange(t *testing.T) {
	db := newTestStore(t)
	biz, err := db.CreateBusiness("Mario's Pizzeria", "const App = () => <div/>;")
	require.NoError(t, err)

	llm := &stubCompleter{reply: "Done! The header is now blue.\n```tsx\nconst App = () => <header className=\"bg-blue-500\"/>;\n```"}
	svc := NewCustomizationService(db, llm, logger.NewTestLogger(t), 10)

	res, err := svc.Customize(context.Background(), biz.ID, "make the header blue")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "Done! The header is now blue.", res.AssistantMessage)
	assert.Contains(t, res.UpdatedSource, "bg-blue-500")
	assert.Equal(t, 9, res.MessagesRemaining)
	assert.Contains(t, llm.prompt, "const App = () => <div/>;")
	assert.Contains(t, llm.prompt, "make the header blue")

	// The new source is durable.
	got, err := db.GetBusinessByID(biz.ID)
	require.NoError(t, err)
	assert.Contains(t, got.GeneratedCode, "bg-blue-500")

	// Both sides of the exchange are recorded.
	msgs, err := db.GetCustomizationMessages(biz.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Sender)
	assert.Equal(t, "assistant", msgs[1].Sender)
}

func TestCustomizeWithoutCodeBlockKeepsSource(t *testing.T) {
	db := newTestStore(t)
	biz, err := db.CreateBusiness("Acme", "const App = () => null;")
	require.NoError(t, err)

	llm := &stubCompleter{reply: "I can't do that, the request is unclear."}
	svc := NewCustomizationService(db, llm, logger.NewTestLogger(t), 10)

	res, err := svc.Customize(context.Background(), biz.ID, "do the thing")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Empty(t, res.UpdatedSource)
	assert.Equal(t, 9, res.MessagesRemaining, "an unclear exchange still consumes a message")

	got, err := db.GetBusinessByID(biz.ID)
	require.NoError(t, err)
	assert.Equal(t, "const App = () => null;", got.GeneratedCode)
}

func TestCustomizeQuotaExhausted(t *testing.T) {
	db := newTestStore(t)
	biz, err := db.CreateBusiness("Acme", "")
	require.NoError(t, err)
	require.NoError(t, db.IncrementMessagesUsed(biz.ID))
	require.NoError(t, db.IncrementMessagesUsed(biz.ID))

	llm := &stubCompleter{reply: "should not be called"}
	svc := NewCustomizationService(db, llm, logger.NewTestLogger(t), 2)

	res, err := svc.Customize(context.Background(), biz.ID, "one more change")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.AssistantMessage, "limit reached")
	assert.Contains(t, res.AssistantMessage, "upgrade")
	assert.Equal(t, 0, res.MessagesRemaining)
	assert.Equal(t, 0, llm.calls)
}

func TestCustomizeUnknownBusiness(t *testing.T) {
	db := newTestStore(t)
	svc := NewCustomizationService(db, &stubCompleter{}, logger.NewTestLogger(t), 10)

	_, err := svc.Customize(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, upstream.ErrNotFound)
}

func TestCustomizeLLMFailureDoesNotConsumeQuota(t *testing.T) {
	db := newTestStore(t)
	biz, err := db.CreateBusiness("Acme", "")
	require.NoError(t, err)

	llm := &stubCompleter{err: errors.New("model unavailable")}
	svc := NewCustomizationService(db, llm, logger.NewNoOpLogger(), 10)

	res, err := svc.Customize(context.Background(), biz.ID, "make it pop")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 10, res.MessagesRemaining)

	q, err := svc.RemainingMessages(biz.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, q.Remaining)
}

func TestCustomizeSendsConversationHistory(t *testing.T) {
	db := newTestStore(t)
	biz, err := db.CreateBusiness("Acme", "const App = () => null;")
	require.NoError(t, err)
	_, err = db.AppendCustomizationMessage(biz.ID, "user", "make the header blue")
	require.NoError(t, err)
	_, err = db.AppendCustomizationMessage(biz.ID, "assistant", "Done! The header is now blue.")
	require.NoError(t, err)

	llm := &stubCompleter{reply: "Okay.\n```tsx\nconst App = () => null;\n```"}
	svc := NewCustomizationService(db, llm, logger.NewTestLogger(t), 10)

	_, err = svc.Customize(context.Background(), biz.ID, "now make it green")
	require.NoError(t, err)

	require.Len(t, llm.history, 2)
	assert.Equal(t, "user", llm.history[0].Role)
	assert.Equal(t, "model", llm.history[1].Role)
}

func TestRemainingMessages(t *testing.T) {
	db := newTestStore(t)
	biz, err := db.CreateBusiness("Acme", "")
	require.NoError(t, err)
	svc := NewCustomizationService(db, &stubCompleter{}, logger.NewTestLogger(t), 3)

	q, err := svc.RemainingMessages(biz.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Remaining)
	assert.True(t, q.CanCustomize)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.IncrementMessagesUsed(biz.ID))
	}
	q, err = svc.RemainingMessages(biz.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Remaining)
	assert.False(t, q.CanCustomize)
}
