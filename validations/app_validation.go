package validations

import (
	"context"
	"regexp"
	"time"

	domainApp "github.com/AzielCF/az-vkmacro/domains/app"
	pkgError "github.com/AzielCF/az-vkmacro/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var apiVersionPattern = regexp.MustCompile(`^\d+\.\d+$`)

func ValidateSettings(ctx context.Context, request domainApp.Settings) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Prefix, validation.Required),
		validation.Field(&request.PathSubstitutions, validation.Required),
		validation.Field(&request.PathAttachments, validation.Required),
		validation.Field(&request.Token, validation.Required),
		validation.Field(&request.APIVersion, validation.Required, validation.Match(apiVersionPattern)),
		validation.Field(&request.LongPollWait, validation.Required, validation.Min(1), validation.Max(90)),
		validation.Field(&request.RequestTimeout, validation.Required, validation.Min(time.Second)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
