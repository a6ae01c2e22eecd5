// Package vmerrors defines the tagged error kinds the engine surfaces to
// callers, per the error model in spec §7. The pipeline switches on Kind
// exclusively; Reason is the short machine-readable token propagated into
// label_reason / reasons[] on Invalid results.
package vmerrors

import "fmt"

// Kind discriminates the category of failure.
type Kind string

const (
	KindLoad     Kind = "Load"
	KindSchema   Kind = "Schema"
	KindContract Kind = "Contract"
	KindValidate Kind = "Validate"
	KindAllocate Kind = "Allocate"
	KindTie      Kind = "Tie"
	KindHash     Kind = "Hash"
	KindGate     Kind = "Gate"
)

// Error is a structured engine error: a Kind, a short Reason token, a
// human-readable Message, optional JSON Pointer to the failing path, and an
// optional wrapped cause.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Pointer string // JSON Pointer to the failing path, for Schema errors
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s[%s]: %s", e.Kind, e.Reason, e.Message)
	if e.Pointer != "" {
		msg += fmt.Sprintf(" (at %s)", e.Pointer)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with no wrapped cause.
func New(kind Kind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message, Context: make(map[string]any)}
}

// Wrap creates an *Error wrapping cause.
func Wrap(kind Kind, reason, message string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message, Cause: cause, Context: make(map[string]any)}
}

// WithPointer attaches a JSON Pointer to the failing path (Schema errors).
func (e *Error) WithPointer(ptr string) *Error {
	e.Pointer = ptr
	return e
}

// WithContext attaches a key/value of diagnostic context.
func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	ve, ok := err.(*Error)
	return ok && ve.Kind == kind
}

// Reasons built-in, frequently reused tokens.
const (
	ReasonGatesFailed                 = "gates_failed"
	ReasonHierarchyCycle              = "Hierarchy.Cycle"
	ReasonHierarchyMultipleRoots      = "Hierarchy.MultipleRoots"
	ReasonHierarchyOrphanParent       = "Hierarchy.OrphanParent"
	ReasonOptionOrderDuplicate        = "Option.OrderIndexDuplicate"
	ReasonTallyUnknownUnit            = "Tally.UnknownUnit"
	ReasonTallyUnknownOption          = "Tally.UnknownOption"
	ReasonTallySumGtValid             = "Tally.Plurality.SumGtValid"
	ReasonTallyOptionExceedsValid     = "Tally.Approval.OptionExceedsValid"
	ReasonTallyScoreExceedsCap        = "Tally.Score.SumExceedsCap"
	ReasonAllocInvalidMagnitude       = "Allocate.InvalidMagnitude"
	ReasonAllocNoEligibleOptions      = "Allocate.NoEligibleOptions"
	ReasonQuorumDataMissing           = "Validate.QuorumDataMissing"
	ReasonFamilyUnresolved            = "DoubleMajority.FamilyUnresolved"
	ReasonFrontierBandsMalformed      = "Validate.FrontierBandsMalformed"
	ReasonTieEmptyCandidateSet        = "Tie.EmptyCandidateSet"
	ReasonTieBadSeed                  = "Tie.BadSeed"
	ReasonTieUnknownOption            = "Tie.UnknownOption"
	ReasonUnsupportedAllocationMethod = "Validate.UnsupportedAllocationMethod"
	ReasonManifestMissingTally        = "Contract.ManifestMissingBallotTallyPath"
	ReasonManifestLegacyBallots       = "Contract.LegacyBallotsPathPresent"
	ReasonManifestURLLikePath         = "Contract.URLLikePath"
	ReasonDigestMismatch              = "Contract.DigestMismatch"
	ReasonExpectationMismatch         = "Contract.ExpectationMismatch"
)
