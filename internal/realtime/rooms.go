package realtime

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/pkg/enums"
)

// RoomBranch names the branch-wide room. Events without a station land here.
func RoomBranch(prefix string, branchID uuid.UUID) string {
	return fmt.Sprintf("%s:branch:%s", prefix, branchID)
}

// RoomStation names the station-scoped room for station-routed events.
func RoomStation(prefix string, branchID uuid.UUID, station enums.Station) string {
	return fmt.Sprintf("%s:branch:%s:station:%s", prefix, branchID, station)
}

// RoomFor picks the one room an event is published to. Station-scoped events
// go to the station room; everything else to the branch room. Subscriber-side
// scoping in the hub makes station terminals see branch-wide events too.
func RoomFor(prefix string, branchID uuid.UUID, station *enums.Station) string {
	if station != nil {
		return RoomStation(prefix, branchID, *station)
	}
	return RoomBranch(prefix, branchID)
}

// SubscribePattern matches every room under the prefix, for the Redis bridge.
func SubscribePattern(prefix string) string {
	return prefix + ":branch:*"
}

// ParseRoom recovers the branch and optional station from a room name.
func ParseRoom(prefix, room string) (uuid.UUID, *enums.Station, error) {
	rest, ok := strings.CutPrefix(room, prefix+":branch:")
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("room %q does not match prefix %q", room, prefix)
	}

	branchRaw := rest
	var station *enums.Station
	if idx := strings.Index(rest, ":station:"); idx >= 0 {
		branchRaw = rest[:idx]
		parsed, err := enums.ParseStation(rest[idx+len(":station:"):])
		if err != nil {
			return uuid.Nil, nil, fmt.Errorf("room %q: %w", room, err)
		}
		station = &parsed
	}

	branchID, err := uuid.Parse(branchRaw)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("room %q: invalid branch id: %w", room, err)
	}
	return branchID, station, nil
}
