package domain

import "errors"

// Errors returned by the card pipeline. Stages wrap them with context and the
// HTTP boundary matches them with errors.Is.
var (
	ErrTemplateUnavailable = errors.New("template unavailable")
	ErrMetadataFetch       = errors.New("metadata fetch failed")
	ErrRepositoryNotFound  = errors.New("repository not found")
	ErrRateLimited         = errors.New("metadata source rate limit exceeded")
	ErrSlotLookup          = errors.New("slot attribute lookup failed")
	ErrRender              = errors.New("render failed")
)
