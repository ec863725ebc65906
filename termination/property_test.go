package termination_test

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/routecore/routecore/termination"
)

// TestProperty_CombinedFiresIffAnyChildFires covers spec §8 property 7:
// Combined fires iff at least one child fires, and its explanation
// concatenates exactly the firing children's explanations, in order.
func TestProperty_CombinedFiresIffAnyChildFires(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numChildren := rapid.IntRange(0, 6).Draw(t, "numChildren")
		iteration := rapid.Uint64Range(0, 1000).Draw(t, "iteration")

		var children []termination.Model
		var wantFired []string
		anyFired := false
		for i := 0; i < numChildren; i++ {
			limit := rapid.Uint64Range(0, 1000).Draw(t, "limit")
			child := termination.IterationsLimit{Limit: limit}
			children = append(children, child)
			if child.ShouldTerminate(time.Time{}, 0, iteration) {
				anyFired = true
				wantFired = append(wantFired, child.Explain(time.Time{}, 0, iteration))
			}
		}

		combined := termination.NewCombined(children...)
		got := combined.ShouldTerminate(time.Time{}, 0, iteration)
		if got != anyFired {
			t.Fatalf("ShouldTerminate=%v, want %v (children=%d iteration=%d)", got, anyFired, numChildren, iteration)
		}

		explanation := combined.Explain(time.Time{}, 0, iteration)
		want := strings.Join(wantFired, ", ")
		if explanation != want {
			t.Fatalf("Explain=%q, want %q", explanation, want)
		}
	})
}
