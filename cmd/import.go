package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/roadmap-cli/internal/model"
)

var importCatalogPath string

// catalogFile is the YAML layout of a resource catalog.
type catalogFile struct {
	Resources []catalogEntry `yaml:"resources"`
}

type catalogEntry struct {
	ID              string   `yaml:"id"`
	Title           string   `yaml:"title"`
	Kind            string   `yaml:"kind"`
	Subject         string   `yaml:"subject"`
	Unit            int      `yaml:"unit"`
	Summary         string   `yaml:"summary"`
	KeyConcepts     []string `yaml:"key_concepts"`
	Difficulty      string   `yaml:"difficulty"`
	SourceURL       string   `yaml:"source_url"`
	ISBN            string   `yaml:"isbn"`
	Edition         string   `yaml:"edition"`
	Channel         string   `yaml:"channel"`
	DurationMinutes int      `yaml:"duration_minutes"`
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a resource catalog YAML into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("import"); err != nil {
			return err
		}

		data, err := os.ReadFile(importCatalogPath)
		if err != nil {
			return eris.Wrap(err, "read catalog file")
		}

		var catalog catalogFile
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return eris.Wrap(err, "parse catalog yaml")
		}
		if len(catalog.Resources) == 0 {
			return eris.New("catalog contains no resources")
		}

		resources := make([]model.Resource, 0, len(catalog.Resources))
		for i, e := range catalog.Resources {
			r, err := toResource(e)
			if err != nil {
				return eris.Wrapf(err, "catalog entry %d", i+1)
			}
			resources = append(resources, r)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		imported, err := st.ImportResources(ctx, resources)
		if err != nil {
			return eris.Wrap(err, "import resources")
		}

		zap.L().Info("import complete",
			zap.Int("imported", imported),
			zap.String("catalog", importCatalogPath),
		)
		return nil
	},
}

func toResource(e catalogEntry) (model.Resource, error) {
	kind := model.ResourceKind(e.Kind)
	switch kind {
	case model.ResourceSlideMaterial, model.ResourceReferenceBook, model.ResourceVideo:
	default:
		return model.Resource{}, eris.Errorf("unknown resource kind %q", e.Kind)
	}
	if e.Title == "" || e.Subject == "" {
		return model.Resource{}, eris.New("title and subject are required")
	}

	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}

	// An absent difficulty stays empty: the store treats it as any-level.
	var difficulty model.Level
	if e.Difficulty != "" {
		difficulty = model.ParseLevel(e.Difficulty)
	}

	return model.Resource{
		ID:              id,
		Title:           e.Title,
		Kind:            kind,
		Subject:         e.Subject,
		Unit:            e.Unit,
		Summary:         e.Summary,
		KeyConcepts:     e.KeyConcepts,
		Difficulty:      difficulty,
		SourceURL:       e.SourceURL,
		ISBN:            e.ISBN,
		Edition:         e.Edition,
		Channel:         e.Channel,
		DurationMinutes: e.DurationMinutes,
	}, nil
}

func init() {
	importCmd.Flags().StringVar(&importCatalogPath, "catalog", "", "path to resource catalog YAML (required)")
	_ = importCmd.MarkFlagRequired("catalog")
	rootCmd.AddCommand(importCmd)
}
