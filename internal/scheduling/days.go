package scheduling

import (
	"math/rand"
	"time"
)

// RandomSource is the subset of *rand.Rand the day assignor needs.
type RandomSource interface {
	Shuffle(n int, swap func(i, j int))
}

// NewRandomSource returns a seeded source; seed 0 seeds from the clock.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// AssignDays picks a day for each of n courses. Days are shuffled, courses are
// split across them as evenly as possible (the first n%len(days) days take one
// extra) and the resulting list is shuffled again so day order is independent
// of course order.
func AssignDays(n int, days []time.Time, rnd RandomSource) []time.Time {
	if n <= 0 || len(days) == 0 {
		return nil
	}
	if rnd == nil {
		rnd = NewRandomSource(0)
	}

	shuffled := make([]time.Time, len(days))
	copy(shuffled, days)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	base := n / len(shuffled)
	remainder := n % len(shuffled)
	assigned := make([]time.Time, 0, n)
	for i, day := range shuffled {
		count := base
		if i < remainder {
			count++
		}
		for k := 0; k < count; k++ {
			assigned = append(assigned, day)
		}
	}

	rnd.Shuffle(len(assigned), func(i, j int) {
		assigned[i], assigned[j] = assigned[j], assigned[i]
	})
	return assigned
}
