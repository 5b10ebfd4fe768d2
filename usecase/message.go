package usecase

import (
	"context"
	"fmt"
	"time"

	domainCommand "github.com/AzielCF/az-vkmacro/domains/command"
	domainMessage "github.com/AzielCF/az-vkmacro/domains/message"
	domainSubstitution "github.com/AzielCF/az-vkmacro/domains/substitution"
	"github.com/AzielCF/az-vkmacro/pkg/botmonitor"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type serviceMessage struct {
	messenger    domainMessage.IMessenger
	command      domainCommand.ICommandUsecase
	substitution domainSubstitution.ISubstitutionUsecase
	monitor      *botmonitor.Monitor

	selfID int64
}

func NewMessageService(
	messenger domainMessage.IMessenger,
	command domainCommand.ICommandUsecase,
	substitution domainSubstitution.ISubstitutionUsecase,
	monitor *botmonitor.Monitor,
) domainMessage.IMessageUsecase {
	if monitor == nil {
		monitor = botmonitor.New(0, 0)
	}
	return &serviceMessage{
		messenger:    messenger,
		command:      command,
		substitution: substitution,
		monitor:      monitor,
	}
}

// Start resolves the account id once, then handles events until ctx is done
// or the transport gives up.
func (service *serviceMessage) Start(ctx context.Context) error {
	selfID, err := service.messenger.GetSelfID(ctx)
	if err != nil {
		return fmt.Errorf("resolve own user id: %w", err)
	}
	service.selfID = selfID
	logrus.Infof("[SESSION] Logged in as user %d, waiting for messages", selfID)

	if err := service.messenger.Poll(ctx, service.HandleEvent); err != nil && ctx.Err() == nil {
		return fmt.Errorf("poll events: %w", err)
	}
	return nil
}

func (service *serviceMessage) HandleEvent(ctx context.Context, event domainMessage.MessageEvent) {
	if event.FromID != service.selfID {
		return
	}

	started := time.Now()
	traceID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{
		"trace_id":   traceID,
		"peer_id":    event.PeerID,
		"message_id": event.ID,
	})
	record := func(stage, status string, err error, metadata map[string]string) {
		e := botmonitor.Event{
			TraceID:    traceID,
			PeerID:     event.PeerID,
			MessageID:  event.ID,
			Stage:      stage,
			Status:     status,
			Metadata:   metadata,
			DurationMs: time.Since(started).Milliseconds(),
		}
		if err != nil {
			e.Error = err.Error()
		}
		service.monitor.Record(e)
		if err != nil {
			service.monitor.LogRecent(log)
		}
	}

	record(botmonitor.StageInbound, botmonitor.StatusOK, nil, nil)

	handled, err := service.command.Handle(ctx, event)
	if handled {
		if err != nil {
			log.WithError(err).Error("[SESSION] Command failed")
			record(botmonitor.StageCommand, botmonitor.StatusError, err, nil)
			return
		}
		log.Debug("[SESSION] Command handled")
		record(botmonitor.StageCommand, botmonitor.StatusOK, nil, nil)
		return
	}

	response, err := service.substitution.Process(ctx, domainSubstitution.ProcessRequest{
		Text:        event.Text,
		Attachments: event.AttachmentsString(),
	})
	if err != nil {
		log.WithError(err).Error("[SESSION] Substitution failed")
		record(botmonitor.StageEdit, botmonitor.StatusError, err, nil)
		return
	}
	if !response.Changed {
		record(botmonitor.StageEdit, botmonitor.StatusSkipped, nil, nil)
		return
	}

	err = service.messenger.EditMessage(ctx, domainMessage.EditRequest{
		PeerID:      event.PeerID,
		MessageID:   event.ID,
		Text:        response.Text,
		Attachments: response.Attachments,
	})
	if err != nil {
		log.WithError(err).Error("[SESSION] Edit failed")
		record(botmonitor.StageEdit, botmonitor.StatusError, err, nil)
		return
	}

	log.Debugf("[SESSION] Message rewritten in %s", time.Since(started))
	var metadata map[string]string
	if response.Attachments != "" {
		metadata = map[string]string{"attachments": response.Attachments}
	}
	record(botmonitor.StageEdit, botmonitor.StatusOK, nil, metadata)
}
