package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
	"github.com/mkevin1491/fyp/internal/usecase/ingestion"
)

func writeBatchSummary(out io.Writer, summary ingestion.BatchSummary, verbose bool) error {
	if _, err := fmt.Fprintf(out, "batch: %s\n%s\n", summary.BatchID, summary.Message); err != nil {
		return errs.Wrap(err, "write batch summary")
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "new_assets\tneeds_approval\tduplicates\trow_errors\tpending"); err != nil {
		return errs.Wrap(err, "write batch tally header")
	}
	if _, err := fmt.Fprintf(
		w,
		"%d\t%d\t%d\t%d\t%d\n",
		summary.NewAssets,
		summary.NeedsApproval,
		summary.Duplicates,
		summary.RowErrors,
		summary.PendingCount,
	); err != nil {
		return errs.Wrap(err, "write batch tally")
	}

	if verbose && len(summary.Rows) > 0 {
		if _, err := fmt.Fprintln(w, "\nrow\tfunctional_location\toutcome\trecord_id\terror"); err != nil {
			return errs.Wrap(err, "write batch rows header")
		}
		for _, row := range summary.Rows {
			if _, err := fmt.Fprintf(
				w,
				"%d\t%s\t%s\t%s\t%s\n",
				row.Index,
				dashIfEmpty(row.FunctionalLocation),
				row.Outcome,
				formatID(row.RecordID),
				dashIfEmpty(row.Error),
			); err != nil {
				return errs.Wrap(err, "write batch row")
			}
		}
	}

	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush batch summary")
	}
	return nil
}

func writePendingTable(out io.Writer, page ports.Page[ports.PendingRecord]) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "id\tfunctional_location\treport_date\tstatus\ttev_db\thotspot_c\tdefect"); err != nil {
		return errs.Wrap(err, "write pending header")
	}
	for _, item := range page.Items {
		if _, err := fmt.Fprintf(
			w,
			"%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID,
			item.FunctionalLocation,
			formatDate(item.ReportDate),
			item.Status,
			formatReading(item.TEVReading),
			formatReading(item.HotspotDeltaT),
			dashIfEmpty(item.DefectDescription1),
		); err != nil {
			return errs.Wrap(err, "write pending row")
		}
	}
	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush pending output")
	}
	return writePageFooter(out, page.Page, page.PageSize, page.Total)
}

func writeApprovalLogTable(out io.Writer, page ports.Page[ports.ApprovalLogEntry]) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "id\ttimestamp\taction\tfunctional_location\tapprover\tmessage"); err != nil {
		return errs.Wrap(err, "write approval log header")
	}
	for _, entry := range page.Items {
		if _, err := fmt.Fprintf(
			w,
			"%d\t%s\t%s\t%s\t%s\t%s\n",
			entry.ID,
			entry.Timestamp.UTC().Format(time.RFC3339),
			entry.Action,
			entry.FunctionalLocation,
			dashIfEmpty(entry.Approver),
			dashIfEmpty(entry.Message),
		); err != nil {
			return errs.Wrap(err, "write approval log row")
		}
	}
	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush approval log output")
	}
	return writePageFooter(out, page.Page, page.PageSize, page.Total)
}

func writePageFooter(out io.Writer, page int, pageSize int, total int64) error {
	if _, err := fmt.Fprintf(out, "page %d (size %d), total %d\n", page, pageSize, total); err != nil {
		return errs.Wrap(err, "write page footer")
	}
	return nil
}

func formatDate(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return value.UTC().Format(inspection.DateLayout)
}

func formatReading(value *float64) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func formatID(id uint64) string {
	if id == 0 {
		return "-"
	}
	return strconv.FormatUint(id, 10)
}

func dashIfEmpty(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
