package scraper

import (
	"math/rand"
	"time"
)

// Humanized pacing bounds. Operations between navigation, scrolling and
// extraction pause for a random interval inside this window so the timing
// profile does not look machine-regular.
const (
	minHumanPause = 400 * time.Millisecond
	maxHumanPause = 1200 * time.Millisecond
)

// humanPause sleeps for a randomized human-scale interval.
func humanPause() {
	span := maxHumanPause - minHumanPause
	time.Sleep(minHumanPause + time.Duration(rand.Int63n(int64(span))))
}

// scrollPause is the shorter pause between individual scroll steps, also
// jittered.
func scrollPause() {
	time.Sleep(150*time.Millisecond + time.Duration(rand.Int63n(int64(350*time.Millisecond))))
}
