package validations

import (
	"context"

	domainCommand "github.com/AzielCF/az-vkmacro/domains/command"
	pkgError "github.com/AzielCF/az-vkmacro/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateSetAttachments(ctx context.Context, request domainCommand.SetAttachmentsRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Name, validation.Required),
		validation.Field(&request.Attachments, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateDeleteAttachments(ctx context.Context, request domainCommand.DeleteAttachmentsRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Name, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
