package substitution

import "context"

type ProcessRequest struct {
	Text        string `json:"text"`
	Attachments string `json:"attachments"`
}

type ProcessResponse struct {
	Text        string `json:"text"`
	Attachments string `json:"attachments"`
	Changed     bool   `json:"changed"`
}

type ISubstitutionUsecase interface {
	// Process applies substitutions, attachment macros and markup, in that order.
	Process(ctx context.Context, request ProcessRequest) (ProcessResponse, error)
}
