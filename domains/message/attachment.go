package message

import (
	"fmt"
	"strconv"
	"strings"
)

type AttachmentType string

const (
	AttachmentPhoto        AttachmentType = "photo"
	AttachmentVideo        AttachmentType = "video"
	AttachmentAudio        AttachmentType = "audio"
	AttachmentDoc          AttachmentType = "doc"
	AttachmentWall         AttachmentType = "wall"
	AttachmentMarket       AttachmentType = "market"
	AttachmentPoll         AttachmentType = "poll"
	AttachmentStory        AttachmentType = "story"
	AttachmentAudioMessage AttachmentType = "audio_message"
)

// MediaRef identifies an uploaded object by owner and id.
type MediaRef struct {
	OwnerID   int64  `json:"owner_id"`
	ID        int64  `json:"id"`
	AccessKey string `json:"access_key,omitempty"`
}

func (r MediaRef) String() string {
	s := strconv.FormatInt(r.OwnerID, 10) + "_" + strconv.FormatInt(r.ID, 10)
	if r.AccessKey != "" {
		s += "_" + r.AccessKey
	}
	return s
}

// Attachment is one of the variants below.
type Attachment interface {
	Type() AttachmentType
	Media() MediaRef
	isAttachment()
}

type Photo struct{ MediaRef }
type Video struct{ MediaRef }
type Audio struct{ MediaRef }
type Doc struct{ MediaRef }
type Wall struct{ MediaRef }
type Market struct{ MediaRef }
type Poll struct{ MediaRef }
type Story struct{ MediaRef }
type AudioMessage struct{ MediaRef }

// Other keeps attachments of a kind the agent has no variant for, so that an
// edit does not silently drop them. Raw is rendered verbatim since gifts,
// stickers and links do not carry an owner_id.
type Other struct {
	Kind string
	Raw  string
	MediaRef
}

func (Photo) Type() AttachmentType        { return AttachmentPhoto }
func (Video) Type() AttachmentType        { return AttachmentVideo }
func (Audio) Type() AttachmentType        { return AttachmentAudio }
func (Doc) Type() AttachmentType          { return AttachmentDoc }
func (Wall) Type() AttachmentType         { return AttachmentWall }
func (Market) Type() AttachmentType       { return AttachmentMarket }
func (Poll) Type() AttachmentType         { return AttachmentPoll }
func (Story) Type() AttachmentType        { return AttachmentStory }
func (AudioMessage) Type() AttachmentType { return AttachmentAudioMessage }
func (o Other) Type() AttachmentType      { return AttachmentType(o.Kind) }

func (r MediaRef) Media() MediaRef { return r }
func (MediaRef) isAttachment()     {}

// Ref renders an attachment as `<type><owner_id>_<id>`.
func Ref(a Attachment) string {
	if o, ok := a.(Other); ok {
		return o.Kind + o.Raw
	}
	return string(a.Type()) + a.Media().String()
}

// JoinAttachments comma-joins the references of attachments.
func JoinAttachments(attachments []Attachment) string {
	refs := make([]string, 0, len(attachments))
	for _, a := range attachments {
		refs = append(refs, Ref(a))
	}
	return strings.Join(refs, ",")
}

// ParseMediaRef parses `<owner_id>_<id>[_<access_key>]`.
func ParseMediaRef(raw string) (MediaRef, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "_", 3)
	if len(parts) < 2 {
		return MediaRef{}, fmt.Errorf("invalid media reference %q", raw)
	}
	owner, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return MediaRef{}, fmt.Errorf("invalid owner id in %q: %w", raw, err)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return MediaRef{}, fmt.Errorf("invalid id in %q: %w", raw, err)
	}
	ref := MediaRef{OwnerID: owner, ID: id}
	if len(parts) == 3 {
		ref.AccessKey = parts[2]
	}
	return ref, nil
}

// ParseAttachment builds the variant matching kind. Known kinds need a valid
// media reference; any other kind is kept as Other with its raw value.
func ParseAttachment(kind, raw string) (Attachment, error) {
	if kind == "" {
		return nil, fmt.Errorf("attachment %q has no type", raw)
	}

	ref, err := ParseMediaRef(raw)
	var attachment Attachment
	switch AttachmentType(kind) {
	case AttachmentPhoto:
		attachment = Photo{ref}
	case AttachmentVideo:
		attachment = Video{ref}
	case AttachmentAudio:
		attachment = Audio{ref}
	case AttachmentDoc:
		attachment = Doc{ref}
	case AttachmentWall:
		attachment = Wall{ref}
	case AttachmentMarket:
		attachment = Market{ref}
	case AttachmentPoll:
		attachment = Poll{ref}
	case AttachmentStory:
		attachment = Story{ref}
	case AttachmentAudioMessage:
		attachment = AudioMessage{ref}
	default:
		return Other{Kind: kind, Raw: raw, MediaRef: ref}, nil
	}
	if err != nil {
		return nil, err
	}
	return attachment, nil
}
