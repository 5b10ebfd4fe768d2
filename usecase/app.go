package usecase

import (
	"context"
	"fmt"

	domainApp "github.com/AzielCF/az-vkmacro/domains/app"
	domainMessage "github.com/AzielCF/az-vkmacro/domains/message"
	"github.com/AzielCF/az-vkmacro/pkg/kvstore"
	"github.com/AzielCF/az-vkmacro/pkg/pattern"
	"github.com/sirupsen/logrus"
)

type serviceApp struct {
	messenger     domainMessage.IMessenger
	substitutions *kvstore.Store
	attachments   *kvstore.Store
	prefix        string
}

func NewAppService(messenger domainMessage.IMessenger, substitutions, attachments *kvstore.Store, prefix string) domainApp.IAppUsecase {
	return &serviceApp{
		messenger:     messenger,
		substitutions: substitutions,
		attachments:   attachments,
		prefix:        prefix,
	}
}

// Check reports what the agent would run with, without polling.
func (service *serviceApp) Check(ctx context.Context, request domainApp.CheckRequest) (response domainApp.CheckResponse, err error) {
	response.Prefix = service.prefix
	response.Substitutions = service.substitutions.Len()
	response.Attachments = service.attachments.Len()
	response.SubstitutionPattern = pattern.Compile(service.prefix, service.substitutions.Keys()).String()
	response.AttachmentPattern = pattern.Compile(service.prefix, service.attachments.Keys()).String()

	if !request.Online {
		return response, nil
	}
	if service.messenger == nil {
		return response, fmt.Errorf("online check requires a messenger")
	}

	selfID, err := service.messenger.GetSelfID(ctx)
	if err != nil {
		return response, fmt.Errorf("verify token: %w", err)
	}
	response.SelfID = selfID
	logrus.Debugf("[APP] Token belongs to user %d", selfID)
	return response, nil
}
