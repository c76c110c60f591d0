package model

// ResourceKind classifies a retrievable educational artifact.
type ResourceKind string

const (
	ResourceSlideMaterial ResourceKind = "slide_material"
	ResourceReferenceBook ResourceKind = "reference_book"
	ResourceVideo         ResourceKind = "video"
)

// Resource is an educational artifact from the document store. The store
// owns these records; the pipeline reads them and annotates a copy with a
// relevance score.
type Resource struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Kind        ResourceKind `json:"kind"`
	Subject     string       `json:"subject"`
	Unit        int          `json:"unit"`
	Summary     string       `json:"summary,omitempty"`
	KeyConcepts []string     `json:"key_concepts,omitempty"`
	Difficulty  Level        `json:"difficulty"`
	SourceURL   string       `json:"source_url,omitempty"`

	// Auxiliary metadata used by the structural-quality bonus.
	ISBN            string `json:"isbn,omitempty"`
	Edition         string `json:"edition,omitempty"`
	Channel         string `json:"channel,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`

	// RelevanceScore is set by the ranker; zero for unranked candidates.
	RelevanceScore float64 `json:"relevance_score,omitempty"`
}

// VideoPlan holds the video search queries generated for one phase:
// exactly two playlist queries plus one oneshot query.
type VideoPlan struct {
	PlaylistQueries []string `json:"playlist_queries"`
	OneshotQuery    string   `json:"oneshot_query"`
}

// PhaseResources bundles the retrieved and ranked resources for one phase.
type PhaseResources struct {
	PhaseID       int        `json:"phase_id"`
	Materials     []Resource `json:"materials"`
	ReferenceBook *Resource  `json:"reference_book,omitempty"`
	VideoPlan     VideoPlan  `json:"video_plan"`
}
