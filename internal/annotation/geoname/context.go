package geoname

import (
	"github.com/turtacn/EpiAnnotator/internal/annotation/span"
)

type mention struct {
	start int
	id    CandidateID
}

// mentionStream lists every (span, candidate) attachment in document order:
// spans by (Start, End), candidates on one span by handle.
func (r *run) mentionStream() []mention {
	byKey := make(map[span.Key][]CandidateID)
	for _, c := range r.candidates {
		for k := range c.spans {
			byKey[k] = append(byKey[k], c.ID)
		}
	}
	keys := make([]span.Key, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sortKeys(keys)

	var out []mention
	for _, k := range keys {
		for _, id := range byKey[k] {
			out = append(out, mention{start: k.Start, id: id})
		}
	}
	return out
}

// enrichContext records, for every mention, the high-confidence mentions
// nearby, then computes the contextual features of every candidate.
//
// Two cursors walk the same mention stream. The resolved cursor runs ahead,
// keeping the last BufferSize high-confidence mentions in a ring. The main
// cursor hands the current ring to each mention it passes, and only moves
// while it trails the resolved cursor by more than LookaheadOffset
// characters, or once the resolved cursor is exhausted. Each cursor visits
// each mention once.
func (r *run) enrichContext() {
	stream := r.mentionStream()
	size, lookahead := r.e.cfg.BufferSize, r.e.cfg.LookaheadOffset

	ring := make([]CandidateID, 0, size)
	next, resolved := 0, 0
	resolvedDone := false
	rfStart, fStart := 0, 0

	for len(ring) < size {
		if resolved == len(stream) {
			resolvedDone = true
			break
		}
		m := stream[resolved]
		resolved++
		rfStart = m.start
		if r.candidates[m.id].HighConfidence {
			ring = append(ring, m.id)
		}
	}

	ringIdx := 0
	for {
		for resolvedDone || fStart < rfStart-lookahead {
			if next == len(stream) {
				for _, c := range r.candidates {
					r.contextualFeatures(c)
				}
				return
			}
			m := stream[next]
			next++
			fStart = m.start
			r.nearby[m.id] = append(r.nearby[m.id], ring...)
		}
		for {
			if resolved == len(stream) {
				resolvedDone = true
				break
			}
			m := stream[resolved]
			resolved++
			rfStart = m.start
			if r.candidates[m.id].HighConfidence {
				// the ring is full here: the fill loop only stops early
				// when the stream is exhausted
				ring[ringIdx%size] = m.id
				ringIdx++
				break
			}
		}
	}
}

//Personal.AI order the ending
