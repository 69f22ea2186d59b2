package quotation

import (
	"sort"
	"time"

	"github.com/quotation-api/internal/domain"
)

// reconcileTimeline merges a status event into the timeline projection.
// The timeline holds at most one entry per status: a repeated occurrence
// overwrites the existing entry's date and description instead of appending.
// The result is re-sorted ascending by date, since overwriting an entry's
// date can reorder it relative to its siblings. The input slice is not
// mutated.
func reconcileTimeline(timeline []domain.TimelineEntry, status domain.QuotationStatus, date time.Time, description string) []domain.TimelineEntry {
	out := make([]domain.TimelineEntry, len(timeline), len(timeline)+1)
	copy(out, timeline)

	updated := false
	for i := range out {
		if out[i].Status == status {
			out[i].Date = date
			out[i].Description = description
			updated = true
			break
		}
	}
	if !updated {
		out = append(out, domain.TimelineEntry{Status: status, Date: date, Description: description})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
