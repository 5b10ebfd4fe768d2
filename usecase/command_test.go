package usecase

import (
	"context"
	"errors"
	"os"
	"testing"

	domainCommand "github.com/AzielCF/az-vkmacro/domains/command"
	domainMessage "github.com/AzielCF/az-vkmacro/domains/message"
	"github.com/AzielCF/az-vkmacro/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commandFixture struct {
	messenger     *fakeMessenger
	substitutions *kvstore.Store
	attachments   *kvstore.Store
	svc           domainCommand.ICommandUsecase
}

func newCommandFixture(t *testing.T, substitutions, attachments string) *commandFixture {
	t.Helper()
	f := &commandFixture{
		messenger:     &fakeMessenger{selfID: 1},
		substitutions: newTestStore(t, "substitutions.json", substitutions),
		attachments:   newTestStore(t, "attachments.json", attachments),
	}
	f.svc = NewCommandService(f.messenger, f.substitutions, f.attachments, "%")
	return f
}

func (f *commandFixture) handle(t *testing.T, event domainMessage.MessageEvent) bool {
	t.Helper()
	if event.PeerID == 0 {
		event.PeerID = 42
	}
	handled, err := f.svc.Handle(context.Background(), event)
	require.NoError(t, err)
	return handled
}

func TestHandle_NotACommand(t *testing.T) {
	f := newCommandFixture(t, `{}`, `{}`)

	for _, text := range []string{"hello", "%hi", " ///help", "//help", "///get-substitutions please"} {
		assert.False(t, f.handle(t, domainMessage.MessageEvent{Text: text}), text)
	}
	assert.Empty(t, f.messenger.sent)
}

func TestHandle_GetSubstitutionsRepliesWithFileContent(t *testing.T) {
	f := newCommandFixture(t, `{"b":"2","a":"1"}`, `{}`)

	assert.True(t, f.handle(t, domainMessage.MessageEvent{Text: domainCommand.GetSubstitutions}))
	reply := f.messenger.lastReply(t)

	parsed, err := kvstore.ParseMapping([]byte(reply))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, parsed.Keys())
	assert.Equal(t, int64(42), f.messenger.sent[0].PeerID)
}

func TestHandle_SetSubstitutions(t *testing.T) {
	f := newCommandFixture(t, `{"old":"x"}`, `{}`)

	assert.True(t, f.handle(t, domainMessage.MessageEvent{Text: domainCommand.SetSubstitutions + "\n {\"hi\":\"hello\"}"}))
	assert.Equal(t, domainCommand.ReplySubstitutionsLoaded, f.messenger.lastReply(t))
	assert.Equal(t, []string{"hi"}, f.substitutions.Keys())

	reloaded, err := kvstore.Load(f.substitutions.Path())
	require.NoError(t, err)
	assert.Equal(t, []string{"hi"}, reloaded.Keys())
}

func TestHandle_SetSubstitutionsInvalidJSONKeepsState(t *testing.T) {
	f := newCommandFixture(t, `{"old":"x"}`, `{}`)
	before, err := os.ReadFile(f.substitutions.Path())
	require.NoError(t, err)

	for _, payload := range []string{" {not json", " [1,2]", ` {"a":1}`, ""} {
		assert.True(t, f.handle(t, domainMessage.MessageEvent{Text: domainCommand.SetSubstitutions + payload}))
		assert.Equal(t, domainCommand.ReplyInvalidJSON, f.messenger.lastReply(t), payload)
	}

	after, err := os.ReadFile(f.substitutions.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, []string{"old"}, f.substitutions.Keys())
}

func TestHandle_ExportImportRoundTrip(t *testing.T) {
	f := newCommandFixture(t, `{"z":"last","a":"first <b>&</b>"}`, `{}`)

	f.handle(t, domainMessage.MessageEvent{Text: domainCommand.GetSubstitutions})
	exported := f.messenger.lastReply(t)
	before := f.substitutions.Snapshot()

	f.handle(t, domainMessage.MessageEvent{Text: domainCommand.SetSubstitutions + " " + exported})
	assert.Equal(t, domainCommand.ReplySubstitutionsLoaded, f.messenger.lastReply(t))
	assert.True(t, before.Equal(f.substitutions.Snapshot()))
}

func TestHandle_SetAttachments(t *testing.T) {
	f := newCommandFixture(t, `{}`, `{}`)

	event := domainMessage.MessageEvent{
		Text: domainCommand.SetAttachments + " cat",
		Attachments: []domainMessage.Attachment{
			domainMessage.Photo{MediaRef: domainMessage.MediaRef{OwnerID: 1, ID: 2}},
			domainMessage.Doc{MediaRef: domainMessage.MediaRef{OwnerID: 3, ID: 4, AccessKey: "k"}},
		},
	}
	assert.True(t, f.handle(t, event))
	assert.Equal(t, domainCommand.ReplyAttachmentsSaved, f.messenger.lastReply(t))

	value, ok := f.attachments.Get("cat")
	require.True(t, ok)
	assert.Equal(t, "photo1_2,doc3_4_k", value)
}

func TestHandle_SetAttachmentsWithoutAttachments(t *testing.T) {
	f := newCommandFixture(t, `{}`, `{}`)

	assert.True(t, f.handle(t, domainMessage.MessageEvent{Text: domainCommand.SetAttachments + " cat"}))
	assert.Equal(t, domainCommand.ReplyAttachmentsNotFound, f.messenger.lastReply(t))
	assert.Equal(t, 0, f.attachments.Len())
}

func TestHandle_SetAttachmentsWithoutName(t *testing.T) {
	f := newCommandFixture(t, `{}`, `{}`)

	event := domainMessage.MessageEvent{
		Text:        domainCommand.SetAttachments,
		Attachments: []domainMessage.Attachment{domainMessage.Photo{MediaRef: domainMessage.MediaRef{OwnerID: 1, ID: 2}}},
	}
	assert.True(t, f.handle(t, event))
	assert.Equal(t, domainCommand.ReplyMacroNameRequired, f.messenger.lastReply(t))
	assert.Equal(t, 0, f.attachments.Len())
}

func TestHandle_DeleteAttachments(t *testing.T) {
	f := newCommandFixture(t, `{}`, `{"cat":"photo1_2","dog":"photo3_4"}`)

	assert.True(t, f.handle(t, domainMessage.MessageEvent{Text: domainCommand.DeleteAttachments + " cat"}))
	assert.Equal(t, domainCommand.ReplyAttachmentsDeleted, f.messenger.lastReply(t))
	assert.Equal(t, []string{"dog"}, f.attachments.Keys())
}

func TestHandle_DeleteMissingAttachmentsLeavesFileUnchanged(t *testing.T) {
	f := newCommandFixture(t, `{}`, `{"cat":"photo1_2"}`)
	before, err := os.ReadFile(f.attachments.Path())
	require.NoError(t, err)

	assert.True(t, f.handle(t, domainMessage.MessageEvent{Text: domainCommand.DeleteAttachments + " missing"}))
	assert.Equal(t, domainCommand.ReplyAttachmentsNotFound, f.messenger.lastReply(t))

	after, err := os.ReadFile(f.attachments.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestHandle_Help(t *testing.T) {
	f := newCommandFixture(t, `{}`, `{}`)

	assert.True(t, f.handle(t, domainMessage.MessageEvent{Text: domainCommand.Help}))
	reply := f.messenger.lastReply(t)
	assert.Equal(t, domainCommand.HelpText("%"), reply)
	assert.Contains(t, reply, "%uline")
}

func TestHandle_ReplyFailureIsReturned(t *testing.T) {
	f := newCommandFixture(t, `{}`, `{}`)
	f.messenger.sendErr = errors.New("network down")

	handled, err := f.svc.Handle(context.Background(), domainMessage.MessageEvent{PeerID: 1, Text: domainCommand.Help})
	assert.True(t, handled)
	assert.ErrorContains(t, err, "network down")
}
