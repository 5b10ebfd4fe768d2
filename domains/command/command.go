package command

import (
	"context"
	"fmt"

	domainMessage "github.com/AzielCF/az-vkmacro/domains/message"
)

const (
	GetSubstitutions  = "///get-substitutions"
	SetSubstitutions  = "///set-substitutions"
	GetAttachments    = "///get-attachments"
	SetAttachments    = "///set-attachments"
	DeleteAttachments = "///delete-attachments"
	Help              = "///help"
)

const (
	ReplySubstitutionsLoaded = "JSON was loaded successfully!"
	ReplyInvalidJSON         = "Unable to decode JSON!"
	ReplyAttachmentsSaved    = "Attachments were saved successfully!"
	ReplyAttachmentsDeleted  = "Attachments were deleted successfully!"
	ReplyAttachmentsNotFound = "Attachments not found!"
	ReplyMacroNameRequired   = "Macro name is required!"
)

const helpTemplate = `Commands:
///get-substitutions - show the substitutions JSON
///set-substitutions <JSON> - replace all substitutions
///get-attachments - show the attachment macros JSON
///set-attachments <name> - save the attachments of this message as macro <name>
///delete-attachments <name> - delete macro <name>
///help - show this text

In any message: %[1]s<key> is replaced by its substitution, %[1]s<name> attaches a macro,
%[1]suline text%[1]suline underlines and %[1]scross text%[1]scross strikes text through.`

// HelpText renders the static help reply for the configured prefix.
func HelpText(prefix string) string {
	return fmt.Sprintf(helpTemplate, prefix)
}

type SetAttachmentsRequest struct {
	Name        string `json:"name"`
	Attachments string `json:"attachments"`
}

type DeleteAttachmentsRequest struct {
	Name string `json:"name"`
}

type ICommandUsecase interface {
	// Handle reports whether event was a command. Replies go to the event's peer.
	Handle(ctx context.Context, event domainMessage.MessageEvent) (handled bool, err error)
}
