package display

import (
	"context"

	"github.com/tablemesh/kds-backend/pkg/enums"
)

// AlertPlayer abstracts whatever makes noise on the terminal. Audio is best
// effort: a nil player or a play failure never blocks ticket handling.
type AlertPlayer interface {
	Play(ctx context.Context, tones int) error
}

// ToneCount maps ticket priority to how many alert tones a new KOT plays.
func ToneCount(priority enums.OrderPriority) int {
	switch priority {
	case enums.OrderPriorityVIP:
		return 3
	case enums.OrderPriorityRush:
		return 2
	default:
		return 1
	}
}
