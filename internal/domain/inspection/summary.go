package inspection

import "fmt"

// Tally counts row outcomes within one batch.
type Tally struct {
	Duplicates    int `json:"duplicates"`
	NewAssets     int `json:"new_assets"`
	NeedsApproval int `json:"needs_approval"`
	RowErrors     int `json:"row_errors"`
}

func (t *Tally) Add(outcome Outcome) {
	switch outcome {
	case OutcomeDuplicate:
		t.Duplicates++
	case OutcomeNewAsset:
		t.NewAssets++
	case OutcomeNeedsApproval:
		t.NeedsApproval++
	case OutcomeRowError:
		t.RowErrors++
	}
}

func (t Tally) Total() int {
	return t.Duplicates + t.NewAssets + t.NeedsApproval + t.RowErrors
}

// SummaryMessage renders the operator-facing message for a finished batch.
func (t Tally) SummaryMessage() string {
	total := t.Total()
	switch {
	case total == 0:
		return "No records found in the upload."
	case t.Duplicates == total:
		return "All records already exist in either pending approvals or switchgear records."
	case t.NewAssets > 0 && t.NeedsApproval > 0:
		return fmt.Sprintf("File uploaded. %d new record(s) added and %d record(s) sent for approval.", t.NewAssets, t.NeedsApproval)
	case t.NewAssets > 0:
		return fmt.Sprintf("File uploaded. %d new record(s) added; nothing needs approval.", t.NewAssets)
	case t.NeedsApproval > 0:
		return fmt.Sprintf("File uploaded. %d record(s) sent for approval; no new records added.", t.NeedsApproval)
	default:
		return fmt.Sprintf("No new records were added. %d duplicate(s), %d row error(s).", t.Duplicates, t.RowErrors)
	}
}
