package vk

import (
	"fmt"
	"html"
	"strings"

	domainMessage "github.com/AzielCF/az-vkmacro/domains/message"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	updateNewMessage = 4

	flagOutbox = 2
)

// ParseUpdate converts one long-poll update into a message event. Updates
// other than "new message" are reported with ok=false.
//
// The new-message layout is
// [4, message_id, flags, peer_id, timestamp, subject, text, extra], where
// extra carries "from" in group chats and attachN_type/attachN pairs.
func ParseUpdate(update gjson.Result, selfID int64) (event domainMessage.MessageEvent, ok bool, err error) {
	fields := update.Array()
	if len(fields) == 0 || fields[0].Int() != updateNewMessage {
		return event, false, nil
	}
	if len(fields) < 7 {
		return event, false, fmt.Errorf("new message update has %d fields", len(fields))
	}

	flags := fields[2].Int()
	event.ID = fields[1].Int()
	event.PeerID = fields[3].Int()
	event.Text = decodeText(fields[6].String())

	var extra gjson.Result
	if len(fields) > 7 {
		extra = fields[7]
	}

	switch from := extra.Get("from"); {
	case from.Exists():
		event.FromID = from.Int()
	case flags&flagOutbox != 0:
		event.FromID = selfID
	default:
		event.FromID = event.PeerID
	}

	for n := 1; ; n++ {
		kind := extra.Get(fmt.Sprintf("attach%d_type", n))
		if !kind.Exists() {
			break
		}
		raw := extra.Get(fmt.Sprintf("attach%d", n)).String()
		attachment, err := domainMessage.ParseAttachment(kind.String(), raw)
		if err != nil {
			// Keep the value as sent so an edit does not drop it.
			logrus.WithError(err).Warnf("[VK] Message %d: attachment %d kept verbatim", event.ID, n)
			attachment = domainMessage.Other{Kind: kind.String(), Raw: raw}
		}
		event.Attachments = append(event.Attachments, attachment)
	}

	return event, true, nil
}

// decodeText undoes the HTML escaping the long-poll server applies to text.
func decodeText(s string) string {
	s = strings.ReplaceAll(s, "<br>", "\n")
	return html.UnescapeString(s)
}
