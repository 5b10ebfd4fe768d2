package app

import (
	"context"
	"time"
)

// Settings is the resolved startup configuration.
type Settings struct {
	Prefix            string        `json:"prefix"`
	PathSubstitutions string        `json:"path_substitutions"`
	PathAttachments   string        `json:"path_attachments"`
	Token             string        `json:"-"`
	APIVersion        string        `json:"api_version"`
	LongPollWait      int           `json:"long_poll_wait"`
	RequestTimeout    time.Duration `json:"request_timeout"`
}

type CheckRequest struct {
	// Online also resolves the account behind the token.
	Online bool `json:"online"`
}

type CheckResponse struct {
	Prefix              string `json:"prefix"`
	Substitutions       int    `json:"substitutions"`
	Attachments         int    `json:"attachments"`
	SubstitutionPattern string `json:"substitution_pattern"`
	AttachmentPattern   string `json:"attachment_pattern"`
	SelfID              int64  `json:"self_id,omitempty"`
}

type IAppUsecase interface {
	Check(ctx context.Context, request CheckRequest) (response CheckResponse, err error)
}
