package inspection

import (
	"fmt"
	"strings"
)

// Outcome is the disposition of one ingested row.
type Outcome string

const (
	OutcomeDuplicate     Outcome = "Duplicate"
	OutcomeNewAsset      Outcome = "NewAsset"
	OutcomeNeedsApproval Outcome = "NeedsApproval"
	OutcomeRowError      Outcome = "RowError"
)

// ApprovalAction is the terminal state of a pending record.
type ApprovalAction string

const (
	ActionApproved ApprovalAction = "Approved"
	ActionRejected ApprovalAction = "Rejected"
)

// ParseApprovalAction matches action names case-insensitively.
func ParseApprovalAction(raw string) (ApprovalAction, error) {
	trimmed := strings.TrimSpace(raw)
	for _, action := range []ApprovalAction{ActionApproved, ActionRejected} {
		if strings.EqualFold(trimmed, string(action)) {
			return action, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
}

// Decide classifies an incoming row against the stored asset and pending rows
// for its functional location. An exact content match against either set is a
// duplicate. Otherwise a row re-reporting a known asset finding needs approval
// and anything else is a new asset.
func Decide(row NormalizedRow, assets []NormalizedRow, pending []NormalizedRow) Outcome {
	for _, existing := range assets {
		if row.SameContent(existing) {
			return OutcomeDuplicate
		}
	}
	for _, existing := range pending {
		if row.SameContent(existing) {
			return OutcomeDuplicate
		}
	}
	for _, existing := range assets {
		if row.SameFinding(existing) {
			return OutcomeNeedsApproval
		}
	}
	return OutcomeNewAsset
}
