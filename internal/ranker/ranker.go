// Package ranker scores noisy candidate resources against a target concept
// and difficulty profile, and selects bounded, deterministic subsets. It is
// a pure function of its inputs: no locking, no I/O, no invented resources.
package ranker

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/roadmap-cli/internal/model"
)

// Weights controls the relative contribution of each scoring factor.
// The four weights must sum to 1.0.
type Weights struct {
	TitleOverlap   float64
	SummaryOverlap float64
	Difficulty     float64
	Structural     float64
}

// DefaultWeights returns the standard factor weights.
func DefaultWeights() Weights {
	return Weights{
		TitleOverlap:   0.4,
		SummaryOverlap: 0.2,
		Difficulty:     0.3,
		Structural:     0.1,
	}
}

// Target describes what the caller is looking for.
type Target struct {
	Concepts        []string
	Difficulty      model.Level
	SubjectKeywords []string
}

// Policy bounds the selection.
type Policy struct {
	Count      int
	KindFilter model.ResourceKind // empty means any kind

	// PlaylistBand selects the video duration tie-break band: true for the
	// playlist band (30min-20h), false for the single-video band (30min-2h).
	PlaylistBand bool
}

// Ranker scores and selects resources.
type Ranker struct {
	weights Weights
}

// New creates a Ranker. Zero-valued weights fall back to DefaultWeights.
func New(weights Weights) *Ranker {
	sum := weights.TitleOverlap + weights.SummaryOverlap + weights.Difficulty + weights.Structural
	if sum == 0 {
		weights = DefaultWeights()
	}
	return &Ranker{weights: weights}
}

// SelectBest scores candidates against target and returns up to policy.Count
// resources in descending score order. It never returns a resource that was
// not in candidates; when too few candidates exist the result is simply
// short, and the caller decides whether that warrants a warning.
func (r *Ranker) SelectBest(candidates []model.Resource, target Target, policy Policy) []model.Resource {
	if policy.Count <= 0 {
		return nil
	}

	scored := make([]model.Resource, 0, len(candidates))
	for _, c := range candidates {
		if policy.KindFilter != "" && c.Kind != policy.KindFilter {
			continue
		}
		c.RelevanceScore = r.Score(c, target)
		scored = append(scored, c)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].RelevanceScore != scored[j].RelevanceScore {
			return scored[i].RelevanceScore > scored[j].RelevanceScore
		}
		return tieBreak(scored[i], scored[j], policy)
	})

	if len(scored) > policy.Count {
		scored = scored[:policy.Count]
	}
	return scored
}

// Score computes the weighted relevance of a single resource, clamped to [0,1].
func (r *Ranker) Score(res model.Resource, target Target) float64 {
	terms := normalizeTerms(append(append([]string{}, target.Concepts...), target.SubjectKeywords...))

	score := r.weights.TitleOverlap*overlapFraction(res.Title, terms) +
		r.weights.SummaryOverlap*overlapFraction(res.Summary, terms) +
		r.weights.Difficulty*difficultyAlignment(res.Difficulty, target.Difficulty) +
		r.weights.Structural*structuralBonus(res)

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// overlapFraction returns the fraction of target terms found as substrings
// in the text, after case and diacritic folding.
func overlapFraction(text string, terms []string) float64 {
	if len(terms) == 0 || text == "" {
		return 0
	}
	folded := foldText(text)
	found := 0
	for _, t := range terms {
		if t != "" && strings.Contains(folded, t) {
			found++
		}
	}
	return float64(found) / float64(len(terms))
}

// difficultyAlignment scores exact matches at full weight, one-step adjacent
// levels at half weight, otherwise zero. The half-weight adjacency is a
// deliberate policy knob: intermediate books still surface for advanced
// targets, just behind exact matches.
func difficultyAlignment(got, want model.Level) float64 {
	if want == "" || got == "" {
		return 0.5
	}
	switch diff := got.Rank() - want.Rank(); {
	case diff == 0:
		return 1.0
	case diff == 1 || diff == -1:
		return 0.5
	default:
		return 0
	}
}

// structuralBonus rewards auxiliary metadata: ISBN/edition for books,
// channel plus an in-band duration for videos. Slide materials with key
// concepts listed also qualify.
func structuralBonus(res model.Resource) float64 {
	switch res.Kind {
	case model.ResourceReferenceBook:
		if res.ISBN != "" || res.Edition != "" {
			return 1.0
		}
	case model.ResourceVideo:
		bonus := 0.0
		if res.Channel != "" {
			bonus += 0.5
		}
		if res.DurationMinutes >= oneshotMinMinutes && res.DurationMinutes <= playlistMaxMinutes {
			bonus += 0.5
		}
		return bonus
	case model.ResourceSlideMaterial:
		if len(res.KeyConcepts) > 0 {
			return 1.0
		}
	}
	return 0
}

// Video duration bands in minutes. A single "oneshot" video is most useful
// between 30 minutes and 2 hours; a playlist can stretch to 20 hours.
const (
	oneshotMinMinutes  = 30
	oneshotMaxMinutes  = 120
	playlistMaxMinutes = 1200
)

// tieBreak orders equal-scored resources by kind-specific secondary criteria.
func tieBreak(a, b model.Resource, policy Policy) bool {
	if a.Kind == model.ResourceVideo && b.Kind == model.ResourceVideo {
		aIn := inBand(a.DurationMinutes, policy.PlaylistBand)
		bIn := inBand(b.DurationMinutes, policy.PlaylistBand)
		if aIn != bIn {
			return aIn
		}
	}
	if a.Kind == model.ResourceReferenceBook && b.Kind == model.ResourceReferenceBook {
		// Prefer the book with richer metadata.
		aMeta := boolToInt(a.ISBN != "") + boolToInt(a.Edition != "")
		bMeta := boolToInt(b.ISBN != "") + boolToInt(b.Edition != "")
		if aMeta != bMeta {
			return aMeta > bMeta
		}
	}
	// Stable fallback: lexicographic by title keeps selection deterministic.
	return a.Title < b.Title
}

func inBand(minutes int, playlist bool) bool {
	if minutes <= 0 {
		return false
	}
	if playlist {
		return minutes >= oneshotMinMinutes && minutes <= playlistMaxMinutes
	}
	return minutes >= oneshotMinMinutes && minutes <= oneshotMaxMinutes
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// foldTransformer lower-cases after stripping combining marks, so "Café"
// and "cafe" compare equal.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldText(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		f := strings.TrimSpace(foldText(t))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
