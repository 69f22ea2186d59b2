package quotation

import (
	"testing"
	"time"

	"github.com/quotation-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileTimeline_AppendsNewStatus(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := []domain.TimelineEntry{
		{Status: domain.StatusDraft, Date: t0, Description: "Quotation created"},
	}

	out := reconcileTimeline(in, domain.StatusSent, t0.Add(time.Hour), "Quotation sent to client")

	require.Len(t, out, 2)
	assert.Equal(t, domain.StatusDraft, out[0].Status)
	assert.Equal(t, domain.StatusSent, out[1].Status)
}

func TestReconcileTimeline_OverwritesExistingStatus(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := []domain.TimelineEntry{
		{Status: domain.StatusDraft, Date: t0, Description: "Quotation created"},
		{Status: domain.StatusSent, Date: t0.Add(time.Hour), Description: "Quotation sent to client"},
	}

	resent := t0.Add(48 * time.Hour)
	out := reconcileTimeline(in, domain.StatusSent, resent, "Quotation sent to client")

	// One entry per status: the sent entry moved, it did not duplicate.
	require.Len(t, out, 2)
	assert.Equal(t, domain.StatusSent, out[1].Status)
	assert.True(t, out[1].Date.Equal(resent))
}

func TestReconcileTimeline_ResortsAfterOverwrite(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := []domain.TimelineEntry{
		{Status: domain.StatusDraft, Date: t0},
		{Status: domain.StatusSent, Date: t0.Add(time.Hour)},
		{Status: domain.StatusRevision, Date: t0.Add(2 * time.Hour)},
	}

	// Re-sending after a revision pushes the sent entry past the revision one.
	out := reconcileTimeline(in, domain.StatusSent, t0.Add(3*time.Hour), "Quotation sent to client")

	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		assert.False(t, out[i].Date.Before(out[i-1].Date), "timeline out of order at %d", i)
	}
	assert.Equal(t, domain.StatusSent, out[2].Status)
}

func TestReconcileTimeline_DoesNotMutateInput(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := []domain.TimelineEntry{
		{Status: domain.StatusDraft, Date: t0, Description: "Quotation created"},
		{Status: domain.StatusSent, Date: t0.Add(time.Hour), Description: "Quotation sent to client"},
	}

	_ = reconcileTimeline(in, domain.StatusSent, t0.Add(2*time.Hour), "Quotation sent to client")

	assert.True(t, in[1].Date.Equal(t0.Add(time.Hour)))
	assert.Len(t, in, 2)
}

func TestReconcileTimeline_EmptyTimeline(t *testing.T) {
	now := time.Now().UTC()
	out := reconcileTimeline(nil, domain.StatusDraft, now, "Quotation created")
	require.Len(t, out, 1)
	assert.Equal(t, domain.StatusDraft, out[0].Status)
}
