package tickets

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablemesh/kds-backend/pkg/enums"
)

func TestRankOrdering(t *testing.T) {
	assert.Less(t, Rank(enums.OrderPriorityVIP, 1), Rank(enums.OrderPriorityRush, 1))
	assert.Less(t, Rank(enums.OrderPriorityRush, 1), Rank(enums.OrderPriorityNormal, 2))
	assert.Less(t, Rank(enums.OrderPriorityNormal, 2), Rank(enums.OrderPriorityNormal, 1))
}

func TestRankVIPBeatsRunningOrder(t *testing.T) {
	// Priority wins over round number: a VIP running order ranks as VIP.
	assert.Equal(t, Rank(enums.OrderPriorityVIP, 1), Rank(enums.OrderPriorityVIP, 3))
}

func makeView(priority enums.OrderPriority, round int, createdAt time.Time) TicketView {
	return TicketView{
		ID:          uuid.New(),
		RoundNumber: round,
		CreatedAt:   createdAt,
		Order:       OrderSummary{ID: uuid.New(), Priority: priority},
	}
}

func TestSortViewsPriorityThenFIFO(t *testing.T) {
	base := time.Date(2025, 8, 12, 12, 0, 0, 0, time.UTC)

	a := makeView(enums.OrderPriorityNormal, 1, base.Add(10*time.Second))
	b := makeView(enums.OrderPriorityVIP, 1, base.Add(20*time.Second))
	c := makeView(enums.OrderPriorityNormal, 2, base.Add(5*time.Second))

	views := []TicketView{a, b, c}
	SortViews(views)

	require.Len(t, views, 3)
	assert.Equal(t, b.ID, views[0].ID, "VIP first")
	assert.Equal(t, c.ID, views[1].ID, "running order second")
	assert.Equal(t, a.ID, views[2].ID, "normal first round last")
}

func TestSortViewsFIFOWithinRank(t *testing.T) {
	base := time.Date(2025, 8, 12, 12, 0, 0, 0, time.UTC)

	older := makeView(enums.OrderPriorityNormal, 1, base)
	newer := makeView(enums.OrderPriorityNormal, 1, base.Add(time.Minute))

	views := []TicketView{newer, older}
	SortViews(views)

	assert.Equal(t, older.ID, views[0].ID)
	assert.Equal(t, newer.ID, views[1].ID)
}

func TestSortViewsStable(t *testing.T) {
	base := time.Date(2025, 8, 12, 12, 0, 0, 0, time.UTC)

	first := makeView(enums.OrderPriorityRush, 1, base)
	second := makeView(enums.OrderPriorityRush, 1, base)

	views := []TicketView{first, second}
	SortViews(views)

	assert.Equal(t, first.ID, views[0].ID, "ties keep input order")
	assert.Equal(t, second.ID, views[1].ID)
}
