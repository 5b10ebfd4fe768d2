package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	domainCommand "github.com/AzielCF/az-vkmacro/domains/command"
	domainMessage "github.com/AzielCF/az-vkmacro/domains/message"
	pkgError "github.com/AzielCF/az-vkmacro/pkg/error"
	"github.com/AzielCF/az-vkmacro/pkg/kvstore"
	"github.com/AzielCF/az-vkmacro/validations"
	"github.com/sirupsen/logrus"
)

type serviceCommand struct {
	messenger     domainMessage.IMessenger
	substitutions *kvstore.Store
	attachments   *kvstore.Store
	prefix        string
}

func NewCommandService(messenger domainMessage.IMessenger, substitutions, attachments *kvstore.Store, prefix string) domainCommand.ICommandUsecase {
	return &serviceCommand{
		messenger:     messenger,
		substitutions: substitutions,
		attachments:   attachments,
		prefix:        prefix,
	}
}

func (service *serviceCommand) Handle(ctx context.Context, event domainMessage.MessageEvent) (bool, error) {
	text := event.Text

	switch {
	case text == domainCommand.GetSubstitutions:
		return true, service.export(ctx, event, service.substitutions)
	case strings.HasPrefix(text, domainCommand.SetSubstitutions):
		payload := strings.TrimLeftFunc(strings.TrimPrefix(text, domainCommand.SetSubstitutions), unicode.IsSpace)
		return true, service.setSubstitutions(ctx, event, payload)
	case text == domainCommand.GetAttachments:
		return true, service.export(ctx, event, service.attachments)
	case strings.HasPrefix(text, domainCommand.SetAttachments):
		name := strings.TrimSpace(strings.TrimPrefix(text, domainCommand.SetAttachments))
		return true, service.setAttachments(ctx, event, name)
	case strings.HasPrefix(text, domainCommand.DeleteAttachments):
		name := strings.TrimSpace(strings.TrimPrefix(text, domainCommand.DeleteAttachments))
		return true, service.deleteAttachments(ctx, event, name)
	case text == domainCommand.Help:
		return true, service.reply(ctx, event, domainCommand.HelpText(service.prefix))
	}

	return false, nil
}

func (service *serviceCommand) export(ctx context.Context, event domainMessage.MessageEvent, store *kvstore.Store) error {
	exported, err := store.Export()
	if err != nil {
		return fmt.Errorf("export %s: %w", store.Path(), err)
	}
	return service.reply(ctx, event, exported)
}

func (service *serviceCommand) setSubstitutions(ctx context.Context, event domainMessage.MessageEvent, payload string) error {
	mapping, err := kvstore.ParseMapping([]byte(payload))
	if err != nil {
		logrus.WithError(err).Warn("[COMMAND] Rejected substitutions payload")
		return service.reply(ctx, event, domainCommand.ReplyInvalidJSON)
	}

	if err := service.substitutions.Replace(mapping); err != nil {
		return fmt.Errorf("save substitutions: %w", err)
	}

	logrus.Infof("[COMMAND] Loaded %d substitutions", mapping.Len())
	return service.reply(ctx, event, domainCommand.ReplySubstitutionsLoaded)
}

func (service *serviceCommand) setAttachments(ctx context.Context, event domainMessage.MessageEvent, name string) error {
	request := domainCommand.SetAttachmentsRequest{
		Name:        name,
		Attachments: event.AttachmentsString(),
	}
	if request.Attachments == "" {
		return service.reply(ctx, event, domainCommand.ReplyAttachmentsNotFound)
	}
	if err := validations.ValidateSetAttachments(ctx, request); err != nil {
		return service.reply(ctx, event, domainCommand.ReplyMacroNameRequired)
	}

	if err := service.attachments.Set(request.Name, request.Attachments); err != nil {
		return fmt.Errorf("save attachment macro %q: %w", request.Name, err)
	}

	logrus.Infof("[COMMAND] Saved attachment macro %q (%s)", request.Name, request.Attachments)
	return service.reply(ctx, event, domainCommand.ReplyAttachmentsSaved)
}

func (service *serviceCommand) deleteAttachments(ctx context.Context, event domainMessage.MessageEvent, name string) error {
	request := domainCommand.DeleteAttachmentsRequest{Name: name}
	if err := validations.ValidateDeleteAttachments(ctx, request); err != nil {
		return service.reply(ctx, event, domainCommand.ReplyMacroNameRequired)
	}

	err := service.attachments.Delete(request.Name)
	var notFound pkgError.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return service.reply(ctx, event, domainCommand.ReplyAttachmentsNotFound)
	case err != nil:
		return fmt.Errorf("delete attachment macro %q: %w", request.Name, err)
	}

	logrus.Infof("[COMMAND] Deleted attachment macro %q", request.Name)
	return service.reply(ctx, event, domainCommand.ReplyAttachmentsDeleted)
}

func (service *serviceCommand) reply(ctx context.Context, event domainMessage.MessageEvent, text string) error {
	if _, err := service.messenger.SendMessage(ctx, domainMessage.SendRequest{
		PeerID: event.PeerID,
		Text:   text,
	}); err != nil {
		return fmt.Errorf("reply to %d: %w", event.PeerID, err)
	}
	return nil
}
