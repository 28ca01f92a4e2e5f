package campaign

import "errors"

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrNotActive        = errors.New("campaign is not active")
	ErrInvalidLeadPrice = errors.New("lead price must be positive")
	ErrInternal         = errors.New("internal campaign error")
)
