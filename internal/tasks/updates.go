package tasks

import (
	"fmt"

	"github.com/desertthunder/tempo/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchTop
	TallyPhase
	FetchPage
	RecordSnapshot
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchTop:
		return "fetch_top"
	case TallyPhase:
		return "tally_genres"
	case FetchPage:
		return "fetch_page"
	case RecordSnapshot:
		return "record_snapshot"
	default:
		return ""
	}
}

func fetchProfileUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchProfile,
		Step:    1,
		Total:   1,
		Message: "Fetching your profile...",
	}
}

func fetchTopUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTop,
		Step:    1,
		Total:   1,
		Message: "Fetching your top artists and tracks...",
	}
}

func tallyGenresUpdate(artists int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TallyPhase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Tallying genres across %d artists...", artists),
	}
}

func fetchPageUpdate(page int, itemType services.ItemType) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    page,
		Total:   0,
		Message: fmt.Sprintf("[page %d] Fetching top %s...", page, itemType),
	}
}

func snapshotRecordedUpdate(itemType services.ItemType) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordSnapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recorded %s snapshot", itemType),
	}
}
