package tickets

import (
	"sort"

	"github.com/tablemesh/kds-backend/pkg/enums"
)

// Display ranks, lowest paints first.
const (
	rankVIP     = 0
	rankRush    = 1
	rankRunning = 2
	rankNormal  = 3
)

// Rank computes the display rank of a ticket given its owning order's
// priority. Running orders (round 2+) bubble above first-round normals even
// though they carry no explicit priority: the table is already seated and
// waiting on its next round.
func Rank(priority enums.OrderPriority, roundNumber int) int {
	switch {
	case priority == enums.OrderPriorityVIP:
		return rankVIP
	case priority == enums.OrderPriorityRush:
		return rankRush
	case roundNumber >= 2:
		return rankRunning
	default:
		return rankNormal
	}
}

// SortViews orders the active set for display: rank ascending, then FIFO by
// creation time within a rank. Stable, so equal keys keep their input order.
// Age bands are coloring only and never touch the sort key.
func SortViews(views []TicketView) {
	sort.SliceStable(views, func(i, j int) bool {
		ri := Rank(views[i].Order.Priority, views[i].RoundNumber)
		rj := Rank(views[j].Order.Priority, views[j].RoundNumber)
		if ri != rj {
			return ri < rj
		}
		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})
}
