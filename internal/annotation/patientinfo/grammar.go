package patientinfo

import (
	"strconv"
	"strings"

	"github.com/turtacn/EpiAnnotator/internal/annotation/match"
)

// ---------------------------------------------------------------------------
// Keyword tables
// ---------------------------------------------------------------------------

var numberWords = map[string]any{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
	"thirteen": 13, "fourteen": 14, "fifteen": 15, "sixteen": 16,
	"seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60, "seventy": 70,
	"eighty": 80, "ninety": 90, "hundred": 100,
}

var unitWords = map[string]any{
	"year": unitYear, "years": unitYear, "yr": unitYear, "yrs": unitYear,
	"month": unitMonth, "months": unitMonth,
}

var approximateWords = map[string]any{
	"about": true, "around": true, "approximately": true, "aproximately": true,
	"roughly": true, "nearly": true, "almost": true, "some": true,
}

var boundWords = map[string]any{
	"under": boundMax, "below": boundMax, "less than": boundMax,
	"younger than": boundMax, "up to": boundMax,
	"over": boundMin, "above": boundMin, "more than": boundMin,
	"older than": boundMin, "at least": boundMin,
}

var childWords = map[string]any{
	"child": true, "children": true, "infant": true, "infants": true,
	"baby": true, "babies": true, "toddler": true, "toddlers": true,
	"kid": true, "kids": true, "newborn": true, "newborns": true,
}

var femaleWords = map[string]any{
	"female": true, "females": true, "woman": true, "women": true,
	"girl": true, "girls": true, "mother": true, "mothers": true,
	"pregnant": true,
}

var maleWords = map[string]any{
	"male": true, "males": true, "man": true, "men": true,
	"boy": true, "boys": true, "father": true, "fathers": true,
}

var statusWords = map[string]any{
	"case": StatusCase, "cases": StatusCase,
	"death": StatusDeath, "deaths": StatusDeath, "died": StatusDeath,
	"fatalities": StatusDeath, "fatal": StatusDeath,
	"hospitalized": StatusHospitalization, "hospitalised": StatusHospitalization,
	"hospitalizations": StatusHospitalization,
	"infected": StatusInfection, "infections": StatusInfection,
}

const (
	unitYear  = "year"
	unitMonth = "month"
	boundMax  = "max"
	boundMin  = "min"
)

// rangeConnectors may sit between the two ends of a numeric range.
var rangeConnectors = map[string]struct{}{"to": {}, "and": {}}

// ---------------------------------------------------------------------------
// Primitive matchers
// ---------------------------------------------------------------------------

// keywords matches the single- and multi-word keys of table against the
// lowercased words of s, longest key first at each position.
func keywords(s *match.Sentence, table map[string]any) []match.Match {
	maxWords := 1
	for k := range table {
		if n := len(strings.Fields(k)); n > maxWords {
			maxWords = n
		}
	}
	var out []match.Match
	for i := range s.Words {
		for n := maxWords; n >= 1; n-- {
			if i+n > len(s.Words) {
				continue
			}
			parts := make([]string, n)
			for j := 0; j < n; j++ {
				parts[j] = strings.ToLower(s.Words[i+j].Text)
			}
			v, ok := table[strings.Join(parts, " ")]
			if !ok {
				continue
			}
			if p, err := match.NewPhrase(s, i, i+n-1, v); err == nil {
				out = append(out, p)
			}
			break
		}
	}
	return out
}

// numbers matches digit strings and number words; the phrase value is the int.
func numbers(s *match.Sentence) []match.Match {
	var out []match.Match
	for i, w := range s.Words {
		var n int
		if v, err := strconv.Atoi(w.Text); err == nil && v >= 0 {
			n = v
		} else if v, ok := numberWords[strings.ToLower(w.Text)]; ok {
			n = v.(int)
		} else {
			continue
		}
		if p, err := match.NewPhrase(s, i, i, n); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// ranges pairs numbers that are adjacent or joined by a connector word and
// increase.
func ranges(nums []match.Match) []match.Match {
	var out []match.Match
	pairs := match.Follows([]match.Results{
		match.Labeled(groupRangeStart, nums),
		match.Labeled(groupRangeEnd, nums),
	}, 1, 0)
	for _, m := range pairs {
		meta := m.(*match.MetaMatch)
		lo, hi := meta.Matches()[0], meta.Matches()[1]
		if hi.FirstWord() == lo.LastWord()+2 {
			between := strings.ToLower(lo.Sentence().Words[lo.LastWord()+1].Text)
			if _, ok := rangeConnectors[between]; !ok {
				continue
			}
		}
		if phraseInt(lo) < phraseInt(hi) {
			out = append(out, m)
		}
	}
	return out
}

func phraseInt(m match.Match) int {
	if p, ok := m.(*match.Phrase); ok {
		if n, ok := p.Value.(int); ok {
			return n
		}
	}
	return 0
}

func phraseString(m match.Match) string {
	if p, ok := m.(*match.Phrase); ok {
		if s, ok := p.Value.(string); ok {
			return s
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Composite grammar
// ---------------------------------------------------------------------------

const (
	groupAge         = "age"
	groupFemale      = "female"
	groupMale        = "male"
	groupCase        = "case"
	groupChild       = "child"
	groupQuantity    = "quantity"
	groupApproximate = "approximate"
	groupBound       = "bound"
	groupUnits       = "units"
	groupCount       = "count"
	groupStatus      = "status"
	groupRangeStart  = "range_start"
	groupRangeEnd    = "range_end"
)

// quantities matches numbers and ranges with an optional approximate or
// bound qualifier in front. Every result exposes a quantity group.
func quantities(s *match.Sentence) []match.Match {
	nums := numbers(s)
	quantity := match.Combine([][]match.Match{ranges(nums), nums}, match.PreferLongerMatch, 0)

	approx := match.Follows([]match.Results{
		match.Labeled(groupApproximate, keywords(s, approximateWords)),
		match.Labeled(groupQuantity, quantity),
	}, 0, 0)
	bounded := match.Follows([]match.Results{
		match.Labeled(groupBound, keywords(s, boundWords)),
		match.Labeled(groupQuantity, quantity),
	}, 0, 0)
	return match.Combine([][]match.Match{approx, bounded, match.Label(groupQuantity, quantity)}, match.PreferLongerMatch, 0)
}

// sentenceMatches runs the grammar over one sentence.
func (a *Annotator) sentenceMatches(s *match.Sentence) []match.Match {
	qty := quantities(s)

	numericAge := match.Follows([]match.Results{
		match.List(qty...),
		match.Labeled(groupUnits, keywords(s, unitWords)),
	}, 0, 0)
	ages := match.Combine([][]match.Match{
		numericAge,
		match.Label(groupChild, keywords(s, childWords)),
	}, match.PreferLongerMatch, 0)

	counts := match.Follows([]match.Results{
		match.Labeled(groupCount, qty),
		match.Labeled(groupStatus, keywords(s, statusWords)),
	}, a.cfg.CountMaxGap, 0)

	female := keywords(s, femaleWords)
	male := keywords(s, maleWords)

	near := match.Near([]match.Results{
		match.Labeled(groupAge, ages),
		match.Labeled(groupFemale, female),
		match.Labeled(groupMale, male),
		match.Labeled(groupCase, counts),
	}, a.cfg.NearWords)

	return match.Combine([][]match.Match{
		near,
		match.Label(groupAge, ages),
		match.Label(groupFemale, female),
		match.Label(groupMale, male),
		match.Label(groupCase, counts),
	}, match.PreferLongerMatch, 0)
}

// ---------------------------------------------------------------------------
// Attribute extraction
// ---------------------------------------------------------------------------

func groups(m match.Match) map[string]match.Match {
	if meta, ok := m.(*match.MetaMatch); ok {
		return meta.GroupDict()
	}
	return nil
}

func intPtr(n int) *int { return &n }

func quantityOf(g map[string]match.Match) Quantity {
	var q Quantity
	_, q.Approximate = g[groupApproximate]
	qm, ok := g[groupQuantity]
	if !ok {
		return q
	}
	if rg := groups(qm); rg != nil {
		if lo, ok := rg[groupRangeStart]; ok {
			q.RangeStart = intPtr(phraseInt(lo))
		}
		if hi, ok := rg[groupRangeEnd]; ok {
			q.RangeEnd = intPtr(phraseInt(hi))
		}
		return q
	}
	n := phraseInt(qm)
	bound := ""
	if b, ok := g[groupBound]; ok {
		bound = phraseString(b)
	}
	switch bound {
	case boundMax:
		q.Max = intPtr(n)
	case boundMin:
		q.Min = intPtr(n)
	default:
		q.Number = intPtr(n)
	}
	return q
}

func ageOf(m match.Match) *Age {
	g := groups(m)
	age := &Age{}
	if _, ok := g[groupChild]; ok {
		age.Child = true
		return age
	}
	age.Quantity = quantityOf(g)
	if u, ok := g[groupUnits]; ok {
		switch phraseString(u) {
		case unitYear:
			age.YearUnits = true
		case unitMonth:
			age.MonthUnits = true
		}
	}
	return age
}

func countOf(m match.Match) *Count {
	g := groups(m)
	c := &Count{}
	if q, ok := g[groupCount]; ok {
		c.Quantity = quantityOf(groups(q))
	}
	if st, ok := g[groupStatus]; ok {
		c.Status = phraseString(st)
	}
	return c
}

func attributesOf(m match.Match) Attributes {
	var attrs Attributes
	g := groups(m)
	if age, ok := g[groupAge]; ok {
		attrs.Age = ageOf(age)
	}
	_, attrs.Female = g[groupFemale]
	_, attrs.Male = g[groupMale]
	if c, ok := g[groupCase]; ok {
		attrs.Count = countOf(c)
	}
	return attrs
}

//Personal.AI order the ending
