package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roadmap-cli/internal/model"
)

var algebraTarget = Target{
	Concepts:        []string{"matrices", "eigenvalues"},
	Difficulty:      model.LevelIntermediate,
	SubjectKeywords: []string{"linear algebra"},
}

func material(title string, difficulty model.Level) model.Resource {
	return model.Resource{
		Title:      title,
		Kind:       model.ResourceSlideMaterial,
		Difficulty: difficulty,
	}
}

func TestScoreBounded(t *testing.T) {
	r := New(DefaultWeights())

	resources := []model.Resource{
		material("", ""),
		material("Linear Algebra: Matrices and Eigenvalues", model.LevelIntermediate),
		{Title: "Complete Guide", Kind: model.ResourceVideo, Channel: "MathChannel", DurationMinutes: 60, Difficulty: model.LevelIntermediate},
		{Title: "Textbook", Kind: model.ResourceReferenceBook, ISBN: "978-0", Edition: "3rd", Difficulty: model.LevelAdvanced},
	}
	for _, res := range resources {
		score := r.Score(res, algebraTarget)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestScoreRewardsTitleOverlap(t *testing.T) {
	r := New(DefaultWeights())

	full := r.Score(material("Matrices and eigenvalues in linear algebra", model.LevelIntermediate), algebraTarget)
	partial := r.Score(material("Introduction to matrices", model.LevelIntermediate), algebraTarget)
	none := r.Score(material("Organic chemistry basics", model.LevelIntermediate), algebraTarget)

	assert.Greater(t, full, partial)
	assert.Greater(t, partial, none)
}

func TestScoreDiacriticFolding(t *testing.T) {
	r := New(DefaultWeights())
	target := Target{Concepts: []string{"algèbre linéaire"}, Difficulty: model.LevelIntermediate}

	folded := r.Score(material("Cours d'algebre lineaire", model.LevelIntermediate), target)
	assert.Greater(t, folded, 0.0)
}

func TestDifficultyAlignment(t *testing.T) {
	assert.Equal(t, 1.0, difficultyAlignment(model.LevelIntermediate, model.LevelIntermediate))
	assert.Equal(t, 0.5, difficultyAlignment(model.LevelBeginner, model.LevelIntermediate))
	assert.Equal(t, 0.5, difficultyAlignment(model.LevelAdvanced, model.LevelIntermediate))
	assert.Equal(t, 0.0, difficultyAlignment(model.LevelBeginner, model.LevelAdvanced))
	assert.Equal(t, 0.5, difficultyAlignment("", model.LevelAdvanced))
}

func TestSelectBestNeverInvents(t *testing.T) {
	r := New(DefaultWeights())

	candidates := []model.Resource{
		material("Matrices", model.LevelIntermediate),
	}
	selected := r.SelectBest(candidates, algebraTarget, Policy{Count: 5, KindFilter: model.ResourceSlideMaterial})
	assert.Len(t, selected, 1)

	selected = r.SelectBest(nil, algebraTarget, Policy{Count: 3})
	assert.Empty(t, selected)
}

func TestSelectBestRespectsCountAndKind(t *testing.T) {
	r := New(DefaultWeights())

	candidates := []model.Resource{
		material("Matrices I", model.LevelIntermediate),
		material("Matrices II", model.LevelIntermediate),
		material("Matrices III", model.LevelIntermediate),
		{Title: "Matrices book", Kind: model.ResourceReferenceBook, Difficulty: model.LevelIntermediate},
	}

	selected := r.SelectBest(candidates, algebraTarget, Policy{Count: 2, KindFilter: model.ResourceSlideMaterial})
	require.Len(t, selected, 2)
	for _, s := range selected {
		assert.Equal(t, model.ResourceSlideMaterial, s.Kind)
	}
}

func TestSelectBestDescendingScores(t *testing.T) {
	r := New(DefaultWeights())

	candidates := []model.Resource{
		material("Cooking for beginners", model.LevelBeginner),
		material("Linear algebra matrices eigenvalues", model.LevelIntermediate),
		material("Some matrices", model.LevelAdvanced),
	}

	selected := r.SelectBest(candidates, algebraTarget, Policy{Count: 3})
	require.Len(t, selected, 3)
	for i := 1; i < len(selected); i++ {
		assert.GreaterOrEqual(t, selected[i-1].RelevanceScore, selected[i].RelevanceScore)
	}
	assert.Equal(t, "Linear algebra matrices eigenvalues", selected[0].Title)
}

func TestSelectBestDeterministicTieBreak(t *testing.T) {
	r := New(DefaultWeights())

	candidates := []model.Resource{
		material("Zeta matrices", model.LevelIntermediate),
		material("Alpha matrices", model.LevelIntermediate),
	}

	first := r.SelectBest(candidates, algebraTarget, Policy{Count: 2})
	second := r.SelectBest([]model.Resource{candidates[1], candidates[0]}, algebraTarget, Policy{Count: 2})
	assert.Equal(t, first, second)
	assert.Equal(t, "Alpha matrices", first[0].Title)
}

func TestVideoBandTieBreak(t *testing.T) {
	r := New(DefaultWeights())
	target := Target{Difficulty: model.LevelIntermediate}

	video := func(title string, minutes int) model.Resource {
		return model.Resource{Title: title, Kind: model.ResourceVideo, Difficulty: model.LevelIntermediate, Channel: "c", DurationMinutes: minutes}
	}

	// Oneshot band tops out at 2 hours; a 10-hour video only fits the
	// playlist band.
	oneshot := r.SelectBest([]model.Resource{video("long", 600), video("short", 90)}, target, Policy{Count: 1})
	require.Len(t, oneshot, 1)
	assert.Equal(t, "short", oneshot[0].Title)

	playlist := r.SelectBest([]model.Resource{video("long", 600), video("tiny", 10)}, target, Policy{Count: 1, PlaylistBand: true})
	require.Len(t, playlist, 1)
	assert.Equal(t, "long", playlist[0].Title)
}

func TestZeroWeightsUseDefaults(t *testing.T) {
	r := New(Weights{})
	score := r.Score(material("linear algebra matrices eigenvalues", model.LevelIntermediate), algebraTarget)
	assert.Greater(t, score, 0.5)
}

func TestSelectBestZeroCount(t *testing.T) {
	r := New(DefaultWeights())
	assert.Nil(t, r.SelectBest([]model.Resource{material("x", "")}, algebraTarget, Policy{Count: 0}))
}
