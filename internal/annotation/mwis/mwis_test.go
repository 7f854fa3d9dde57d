package mwis

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iv(start, end int, w float64, name string) Interval[string] {
	return Interval[string]{Start: start, End: end, Weight: w, Value: name}
}

func values(ivs []Interval[string]) []string {
	out := make([]string, len(ivs))
	for i, v := range ivs {
		out[i] = v.Value
	}
	return out
}

func TestFind_Empty(t *testing.T) {
	assert.Empty(t, Find[string](nil))
	assert.Empty(t, Find([]Interval[string]{iv(3, 3, 5, "empty")}))
}

func TestFind_PrefersHeavierCombination(t *testing.T) {
	got := Find([]Interval[string]{
		iv(0, 10, 10, "long"),
		iv(0, 4, 6, "left"),
		iv(5, 10, 6, "right"),
	})
	assert.Equal(t, []string{"left", "right"}, values(got))
}

func TestFind_HalfOpenTouchingIsCompatible(t *testing.T) {
	got := Find([]Interval[string]{
		iv(0, 5, 1, "a"),
		iv(5, 9, 1, "b"),
	})
	assert.Equal(t, []string{"a", "b"}, values(got))
}

func TestFind_CompoundBeatsParts(t *testing.T) {
	// "Seattle, WA": compound span weight = len + score
	got := Find([]Interval[string]{
		iv(0, 7, 7.9, "Seattle"),
		iv(9, 11, 2.8, "WA"),
		iv(0, 11, 11.9, "Seattle, WA"),
	})
	assert.Equal(t, []string{"Seattle, WA"}, values(got))
}

func TestFind_SecondaryScoreBreaksTie(t *testing.T) {
	got := Find([]Interval[string]{
		iv(0, 5, 5.3, "low"),
		iv(0, 5, 5.7, "high"),
	})
	assert.Equal(t, []string{"high"}, values(got))
}

func TestFind_ResultOrderedByStart(t *testing.T) {
	got := Find([]Interval[string]{
		iv(20, 25, 1, "c"),
		iv(0, 3, 1, "a"),
		iv(10, 12, 1, "b"),
	})
	assert.Equal(t, []string{"a", "b", "c"}, values(got))
}

func bruteForce(ivs []Interval[string]) float64 {
	best := 0.0
	n := len(ivs)
	for mask := 0; mask < 1<<n; mask++ {
		var picked []Interval[string]
		ok := true
		for i := 0; i < n && ok; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			for _, p := range picked {
				if p.Overlaps(ivs[i]) {
					ok = false
					break
				}
			}
			picked = append(picked, ivs[i])
		}
		if ok {
			if w := TotalWeight(picked); w > best {
				best = w
			}
		}
	}
	return best
}

func TestFind_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(10)
		ivs := make([]Interval[string], n)
		for i := range ivs {
			start := rng.Intn(30)
			end := start + 1 + rng.Intn(8)
			ivs[i] = iv(start, end, float64(rng.Intn(20))+rng.Float64(), "")
		}

		got := Find(ivs)
		for i := range got {
			for j := i + 1; j < len(got); j++ {
				require.False(t, got[i].Overlaps(got[j]), "round %d: result overlaps", round)
			}
		}
		assert.InDelta(t, bruteForce(ivs), TotalWeight(got), 1e-9, "round %d", round)
	}
}

//Personal.AI order the ending
