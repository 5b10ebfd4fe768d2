package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	domainMessage "github.com/AzielCF/az-vkmacro/domains/message"
	"github.com/AzielCF/az-vkmacro/pkg/kvstore"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	mu      sync.Mutex
	selfID  int64
	events  []domainMessage.MessageEvent
	sent    []domainMessage.SendRequest
	edits   []domainMessage.EditRequest
	sendErr error
	editErr error
	// failEditOf makes the edit of one message id fail.
	failEditOf int64
}

func (f *fakeMessenger) GetSelfID(context.Context) (int64, error) {
	return f.selfID, nil
}

func (f *fakeMessenger) Poll(ctx context.Context, handler domainMessage.EventHandler) error {
	for _, event := range f.events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		handler(ctx, event)
	}
	return nil
}

func (f *fakeMessenger) SendMessage(_ context.Context, request domainMessage.SendRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.sent = append(f.sent, request)
	return int64(len(f.sent)), nil
}

func (f *fakeMessenger) EditMessage(_ context.Context, request domainMessage.EditRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	if f.failEditOf != 0 && request.MessageID == f.failEditOf {
		return errors.New("flood control")
	}
	f.edits = append(f.edits, request)
	return nil
}

func (f *fakeMessenger) lastReply(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "expected a reply")
	return f.sent[len(f.sent)-1].Text
}

// newTestStore writes content to a temp file and loads it.
func newTestStore(t *testing.T, name, content string) *kvstore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	store, err := kvstore.Load(path)
	require.NoError(t, err)
	return store
}
