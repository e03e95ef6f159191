package scheduling

import (
	"sort"
	"time"
)

// SortRooms returns a copy of rooms ordered by descending capacity, ties by code.
func SortRooms(rooms []Room) []Room {
	sorted := make([]Room, len(rooms))
	copy(sorted, rooms)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Capacity != sorted[j].Capacity {
			return sorted[i].Capacity > sorted[j].Capacity
		}
		return sorted[i].Code < sorted[j].Code
	})
	return sorted
}

// AssignRooms walks rooms from largest to smallest, skipping busy ones, until
// the collected capacity covers needed seats. It returns nil when the pool is
// exhausted first; a partial set is never returned.
func AssignRooms(needed int, rooms []Room, occupancy *Occupancy, date time.Time, start, end Clock, gap int) []Room {
	var chosen []Room
	total := 0
	for _, room := range SortRooms(rooms) {
		if occupancy.RoomBusy(room.ID, date, start, end, gap) {
			continue
		}
		chosen = append(chosen, room)
		total += room.Capacity
		if total >= needed {
			return chosen
		}
	}
	return nil
}

func roomIDs(rooms []Room) []string {
	ids := make([]string, len(rooms))
	for i, room := range rooms {
		ids[i] = room.ID
	}
	return ids
}
