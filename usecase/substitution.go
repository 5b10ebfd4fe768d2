package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	domainSubstitution "github.com/AzielCF/az-vkmacro/domains/substitution"
	"github.com/AzielCF/az-vkmacro/pkg/kvstore"
	"github.com/AzielCF/az-vkmacro/pkg/markup"
	"github.com/AzielCF/az-vkmacro/pkg/pattern"
	"github.com/sirupsen/logrus"
)

type serviceSubstitution struct {
	prefix        string
	substitutions *kvstore.Store
	attachments   *kvstore.Store
	markup        *markup.Transformer

	mu                  sync.RWMutex
	substitutionPattern *pattern.Pattern
	attachmentPattern   *pattern.Pattern
}

// NewSubstitutionService compiles both patterns and keeps them in step with
// their stores: a store mutation recompiles before it returns.
func NewSubstitutionService(prefix string, substitutions, attachments *kvstore.Store) domainSubstitution.ISubstitutionUsecase {
	service := &serviceSubstitution{
		prefix:              prefix,
		substitutions:       substitutions,
		attachments:         attachments,
		markup:              markup.NewTransformer(prefix),
		substitutionPattern: pattern.Compile(prefix, substitutions.Keys()),
		attachmentPattern:   pattern.Compile(prefix, attachments.Keys()),
	}

	substitutions.OnChange(func(keys []string) {
		compiled := pattern.Compile(prefix, keys)
		service.mu.Lock()
		service.substitutionPattern = compiled
		service.mu.Unlock()
		logrus.Debugf("[SUBSTITUTION] Recompiled substitution pattern with %d keys", len(keys))
	})
	attachments.OnChange(func(keys []string) {
		compiled := pattern.Compile(prefix, keys)
		service.mu.Lock()
		service.attachmentPattern = compiled
		service.mu.Unlock()
		logrus.Debugf("[SUBSTITUTION] Recompiled attachment pattern with %d keys", len(keys))
	})

	return service
}

func (service *serviceSubstitution) patterns() (*pattern.Pattern, *pattern.Pattern) {
	service.mu.RLock()
	defer service.mu.RUnlock()
	return service.substitutionPattern, service.attachmentPattern
}

func (service *serviceSubstitution) Process(_ context.Context, request domainSubstitution.ProcessRequest) (response domainSubstitution.ProcessResponse, err error) {
	substitutionPattern, attachmentPattern := service.patterns()
	text := request.Text
	changed := false

	// 1. Text substitutions
	substituted, _, err := substitutionPattern.Replace(text, service.substitutions.Get)
	if err != nil {
		return response, fmt.Errorf("apply substitutions: %w", err)
	}
	if substituted != text {
		changed = true
	}
	text = substituted

	// 2. Attachment macros, removed from the text in match order
	var refs []string
	stripped, _, err := attachmentPattern.Replace(text, func(key string) (string, bool) {
		ref, ok := service.attachments.Get(key)
		if ok {
			refs = append(refs, ref)
		}
		return "", ok
	})
	if err != nil {
		return response, fmt.Errorf("apply attachment macros: %w", err)
	}
	if stripped != text {
		changed = true
	}
	text = stripped

	// 3. Inline markup
	if transformed, ok := service.markup.Transform(text); ok {
		if transformed != text {
			changed = true
		}
		text = transformed
	}

	response.Text = text
	response.Attachments = appendAttachments(request.Attachments, refs)
	response.Changed = changed
	return response, nil
}

// appendAttachments joins the message's own attachments with the macro refs.
func appendAttachments(original string, refs []string) string {
	if len(refs) == 0 {
		return original
	}
	macros := strings.Join(refs, ",")
	if original == "" {
		return macros
	}
	return original + "," + macros
}
