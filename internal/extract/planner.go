package extract

import "fmt"

// Cutoff returns the cumulative word-count cutoff for one attempt:
// min(chunkStep*step, totalWords). It is non-decreasing in step and
// saturates at totalWords, so the cheapest context is tried first and no
// attempt ever requests more text than exists.
//
// Negative inputs are a programming error and panic.
func Cutoff(step, totalWords, chunkStep int) int {
	if step < 1 || totalWords < 0 || chunkStep < 0 {
		panic(fmt.Sprintf("extract: invalid cutoff input (step=%d, totalWords=%d, chunkStep=%d)",
			step, totalWords, chunkStep))
	}
	end := chunkStep * step
	if end > totalWords {
		return totalWords
	}
	return end
}
