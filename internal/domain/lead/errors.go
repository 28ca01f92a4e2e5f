package lead

import "errors"

var (
	ErrLeadNotFound      = errors.New("lead not found")
	ErrInvalidTransition = errors.New("invalid lead status transition")
	ErrCampaignInactive  = errors.New("campaign is not accepting leads")
	ErrNoActiveDeposit   = errors.New("merchant has no active deposit")
	ErrInternal          = errors.New("internal lead error")
)
