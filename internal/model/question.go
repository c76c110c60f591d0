package model

// QuestionType classifies how an interview question should be answered.
type QuestionType string

const (
	QuestionOpenEnded      QuestionType = "open_ended"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionRatingScale    QuestionType = "rating_scale"
)

// ParseQuestionType coerces an arbitrary string to a known QuestionType.
// Unrecognized values default to open_ended.
func ParseQuestionType(s string) QuestionType {
	switch QuestionType(s) {
	case QuestionOpenEnded, QuestionMultipleChoice, QuestionRatingScale:
		return QuestionType(s)
	default:
		return QuestionOpenEnded
	}
}

// Question is a single interview question used to probe the learner's background.
type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Category string       `json:"category"`
	Required bool         `json:"required"`
	Context  string       `json:"context,omitempty"`
}

// Level is the learner's assessed proficiency.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ParseLevel coerces an arbitrary string to a known Level. Unrecognized
// values default to intermediate.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return Level(s)
	default:
		return LevelIntermediate
	}
}

// Rank returns the ordinal position of the level on the
// beginner < intermediate < advanced scale.
func (l Level) Rank() int {
	switch l {
	case LevelBeginner:
		return 0
	case LevelIntermediate:
		return 1
	case LevelAdvanced:
		return 2
	default:
		return 1
	}
}

// SkillEvaluation is the assessed proficiency profile built from interview answers.
type SkillEvaluation struct {
	Level      Level    `json:"level"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Notes      []string `json:"notes"`
}
