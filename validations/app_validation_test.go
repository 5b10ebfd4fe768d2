package validations

import (
	"context"
	"errors"
	"testing"
	"time"

	domainApp "github.com/AzielCF/az-vkmacro/domains/app"
	pkgError "github.com/AzielCF/az-vkmacro/pkg/error"
	"github.com/stretchr/testify/assert"
)

func validSettings() domainApp.Settings {
	return domainApp.Settings{
		Prefix:            "%",
		PathSubstitutions: "substitutions.json",
		PathAttachments:   "attachments.json",
		Token:             "token",
		APIVersion:        "5.131",
		LongPollWait:      25,
		RequestTimeout:    10 * time.Second,
	}
}

func TestValidateSettings(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ValidateSettings(ctx, validSettings()))

	cases := map[string]func(*domainApp.Settings){
		"empty prefix":      func(s *domainApp.Settings) { s.Prefix = "" },
		"missing token":     func(s *domainApp.Settings) { s.Token = "" },
		"bad api version":   func(s *domainApp.Settings) { s.APIVersion = "latest" },
		"wait too long":     func(s *domainApp.Settings) { s.LongPollWait = 120 },
		"timeout too short": func(s *domainApp.Settings) { s.RequestTimeout = time.Millisecond },
		"no attachments":    func(s *domainApp.Settings) { s.PathAttachments = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := validSettings()
			mutate(&s)
			err := ValidateSettings(ctx, s)
			var vErr pkgError.ValidationError
			assert.True(t, errors.As(err, &vErr), err)
		})
	}
}
