package config

import "time"

var (
	AppVersion = "v1.0.0"
	AppDebug   = false

	// SubstitutionPrefix starts every substitution key, macro name and markup tag.
	SubstitutionPrefix = "%"

	PathSubstitutions = "substitutions.json"
	PathAttachments   = "attachments.json"

	// VKToken takes precedence over the contents of VKTokenPath.
	VKToken          = ""
	VKTokenPath      = "token.txt"
	VKAPIVersion     = "5.131"
	VKAPIBaseURL     = "https://api.vk.com/method"
	VKLongPollWait   = 25
	VKRequestTimeout = 10 * time.Second

	MonitorBufferSize = 200
	MonitorTTL        = time.Hour
)
