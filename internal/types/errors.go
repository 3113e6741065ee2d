package types

import "errors"

// Sentinel errors for configurator operations.
//
// The local failure taxonomy: rule violations and missing required selections
// block submission locally and never reach the network; catalog
// inconsistencies are recovered silently; the remaining errors surface
// external-collaborator outcomes. Nothing here is fatal to a session.
var (
	// ErrRuleViolation indicates a deny rule matched or an allow-triggered
	// requirement is unmet; submission is blocked locally.
	ErrRuleViolation = errors.New("selection combination violates a business rule")

	// ErrPendingMandatoryFields indicates conditionally mandatory
	// specification types are still unselected (tooltip warnings pending).
	ErrPendingMandatoryFields = errors.New("conditionally mandatory fields are unselected")

	// ErrMissingRequiredSelection indicates a catalog-mandatory, visible
	// specification type has no selection.
	ErrMissingRequiredSelection = errors.New("required specification types are unselected")

	// ErrSubmissionRejected indicates the external pricing system rejected
	// the variant request; the server message is surfaced verbatim.
	ErrSubmissionRejected = errors.New("variant submission rejected by pricing system")

	// ErrDataQualityGuard indicates the generated production code or
	// description exceeds length limits. A system configuration defect, not
	// user error; the created record exists server-side and is kept, flagged
	// suspect.
	ErrDataQualityGuard = errors.New("generated variant data exceeds length limits")

	// ErrTransientNetwork indicates the preview/create/refresh call failed at
	// the transport level. Retryable; no automatic retry is performed.
	ErrTransientNetwork = errors.New("pricing system unreachable")

	// ErrSubmissionInFlight indicates a submit attempt while another is
	// outstanding for the same session. Submissions are serialized because
	// the pricing system is the source of truth for uniqueness.
	ErrSubmissionInFlight = errors.New("submission already in flight")

	// ErrSessionSubmitted indicates a mutation on a session that already
	// created a variant; only reset or price refresh are allowed.
	ErrSessionSubmitted = errors.New("session already submitted")

	// ErrSessionNotSubmitted indicates a price refresh on a session that has
	// not created a variant yet.
	ErrSessionNotSubmitted = errors.New("session has no submitted variant")

	// ErrUnknownSpecType indicates a selection for a specification type the
	// catalog does not declare.
	ErrUnknownSpecType = errors.New("unknown specification type")

	// ErrUnknownOption indicates a selection of an option the specification
	// type does not declare.
	ErrUnknownOption = errors.New("unknown option")

	// ErrTooManyConditions indicates a rule exceeds MaxRuleConditions.
	ErrTooManyConditions = errors.New("rule has too many conditions")

	// ErrTooManyRequireEntries indicates an allow rule exceeds MaxRequireEntries.
	ErrTooManyRequireEntries = errors.New("rule has too many require entries")

	// ErrRuleSetTooLarge indicates a rule refresh exceeds MaxRuleSetSize.
	ErrRuleSetTooLarge = errors.New("rule set exceeds maximum size")

	// ErrEmptyConditions indicates a deny or allow rule with no conditions.
	ErrEmptyConditions = errors.New("rule has no conditions")
)
