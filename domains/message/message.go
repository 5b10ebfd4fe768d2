package message

import "context"

// MessageEvent is a read-only view of one inbound message.
type MessageEvent struct {
	ID          int64        `json:"id"`
	PeerID      int64        `json:"peer_id"`
	FromID      int64        `json:"from_id"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"-"`
}

// AttachmentsString renders the attachments the way the edit call expects them.
func (e MessageEvent) AttachmentsString() string {
	return JoinAttachments(e.Attachments)
}

type SendRequest struct {
	PeerID int64  `json:"peer_id"`
	Text   string `json:"message"`
}

type EditRequest struct {
	PeerID      int64  `json:"peer_id"`
	MessageID   int64  `json:"message_id"`
	Text        string `json:"message"`
	Attachments string `json:"attachment"`
}

// EventHandler is invoked for every inbound message, one at a time.
type EventHandler func(ctx context.Context, event MessageEvent)

// IMessenger is the chat platform the agent runs on.
type IMessenger interface {
	GetSelfID(ctx context.Context) (int64, error)
	// Poll blocks, delivering events to handler in receipt order until ctx
	// is cancelled or the transport fails.
	Poll(ctx context.Context, handler EventHandler) error
	SendMessage(ctx context.Context, request SendRequest) (int64, error)
	EditMessage(ctx context.Context, request EditRequest) error
}

// IMessageUsecase drives the agent: it receives every inbound message and
// decides whether to run a command, rewrite the message or ignore it.
type IMessageUsecase interface {
	Start(ctx context.Context) error
	HandleEvent(ctx context.Context, event MessageEvent)
}
