package vk

import (
	"testing"

	domainMessage "github.com/AzielCF/az-vkmacro/domains/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParseUpdate_OutgoingPrivateMessage(t *testing.T) {
	update := gjson.Parse(`[4, 55, 35, 200, 1700000000, " ... ", "a &amp; b<br>%hi", {"attach1_type":"photo","attach1":"1_2","attach2_type":"doc","attach2":"3_4_key"}]`)

	event, ok, err := ParseUpdate(update, 100)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, int64(55), event.ID)
	assert.Equal(t, int64(200), event.PeerID)
	assert.Equal(t, int64(100), event.FromID)
	assert.Equal(t, "a & b\n%hi", event.Text)
	assert.Equal(t, "photo1_2,doc3_4_key", event.AttachmentsString())
}

func TestParseUpdate_IncomingPrivateMessage(t *testing.T) {
	update := gjson.Parse(`[4, 56, 1, 200, 1700000000, " ... ", "hey", {}]`)

	event, ok, err := ParseUpdate(update, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(200), event.FromID)
	assert.Empty(t, event.Attachments)
}

func TestParseUpdate_ChatMessageUsesFrom(t *testing.T) {
	update := gjson.Parse(`[4, 57, 3, 2000000001, 1700000000, "", "hey", {"from":"100"}]`)

	event, ok, err := ParseUpdate(update, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(100), event.FromID)
	assert.Equal(t, int64(2000000001), event.PeerID)
}

func TestParseUpdate_IgnoresOtherUpdates(t *testing.T) {
	for _, raw := range []string{`[2, 55, 128, 200]`, `[61, 200, 1]`, `[]`} {
		_, ok, err := ParseUpdate(gjson.Parse(raw), 100)
		assert.NoError(t, err, raw)
		assert.False(t, ok, raw)
	}
}

func TestParseUpdate_Malformed(t *testing.T) {
	_, _, err := ParseUpdate(gjson.Parse(`[4, 55, 3]`), 100)
	assert.Error(t, err)
}

func TestParseUpdate_KeepsMessageWithSingleIDAttachment(t *testing.T) {
	update := gjson.Parse(`[4, 60, 3, 200, 0, "", "%hi", {"attach1_type":"gift","attach1":"123","attach2_type":"sticker","attach2":"9014"}]`)

	event, ok, err := ParseUpdate(update, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "%hi", event.Text)
	assert.Equal(t, int64(100), event.FromID)
	assert.Equal(t, "gift123,sticker9014", event.AttachmentsString())
}

func TestParseUpdate_KeepsMalformedAttachmentVerbatim(t *testing.T) {
	update := gjson.Parse(`[4, 61, 3, 200, 0, "", "///help", {"attach1_type":"photo","attach1":"broken","attach2_type":"doc","attach2":"3_4"}]`)

	event, ok, err := ParseUpdate(update, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "///help", event.Text)
	assert.Equal(t, "photobroken,doc3_4", event.AttachmentsString())
}

func TestParseUpdate_UnknownAttachmentKindIsKept(t *testing.T) {
	update := gjson.Parse(`[4, 58, 3, 200, 0, "", "", {"attach1_type":"sticker","attach1":"0_9"}]`)

	event, ok, err := ParseUpdate(update, 100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, event.Attachments, 1)
	assert.Equal(t, domainMessage.AttachmentType("sticker"), event.Attachments[0].Type())
}
