package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/roadmap-cli/internal/model"
)

var (
	runGoal       string
	runSubject    string
	runBackground string
	runHours      int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a roadmap for a single learning goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("run"); err != nil {
			return err
		}

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		req := model.Request{
			LearningGoal:   runGoal,
			Subject:        runSubject,
			UserBackground: runBackground,
			HoursPerWeek:   runHours,
		}

		roadmap, err := p.Run(ctx, req, nil)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("roadmap generated",
			zap.String("subject", req.Subject),
			zap.Int("phases", roadmap.Analytics.TotalPhases),
			zap.Int("total_hours", roadmap.Analytics.TotalEstimatedHours),
			zap.Int("resources", roadmap.Analytics.TotalResources),
			zap.Int("degraded_stages", roadmap.Meta.DegradedStages),
		)

		// Print roadmap JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(roadmap)
	},
}

func init() {
	runCmd.Flags().StringVar(&runGoal, "goal", "", "learning goal (required)")
	runCmd.Flags().StringVar(&runSubject, "subject", "", "subject area (required)")
	runCmd.Flags().StringVar(&runBackground, "background", "", "learner's stated background")
	runCmd.Flags().IntVar(&runHours, "hours-per-week", 5, "available study hours per week")
	_ = runCmd.MarkFlagRequired("goal")
	_ = runCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(runCmd)
}
