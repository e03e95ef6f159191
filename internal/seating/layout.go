package seating

// FillPattern marks which physical seats of a seat group hold a student
// (1) and which are left as aisle (0).
func FillPattern(group int) []int {
	switch group {
	case 2:
		return []int{1, 0}
	case 3:
		return []int{1, 0, 1}
	case 4:
		return []int{1, 0, 0, 1}
	}
	if group <= 0 {
		return nil
	}
	pattern := make([]int, group)
	for i := range pattern {
		pattern[i] = 1
	}
	return pattern
}

// UsableSeats counts the seats of a group that may be occupied.
func UsableSeats(group int) int {
	n := 0
	for _, used := range FillPattern(group) {
		n += used
	}
	return n
}

// SeatsPerRow sums the usable seats of every column group in a row.
func SeatsPerRow(groups []int) int {
	total := 0
	for _, g := range groups {
		total += UsableSeats(g)
	}
	return total
}

// DeriveCapacity is the room capacity implied by its layout.
func DeriveCapacity(rows int, groups []int) int {
	if rows <= 0 {
		return 0
	}
	return rows * SeatsPerRow(groups)
}
