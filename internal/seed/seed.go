package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/repos"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

// File is the on-disk format for pre-authored study content. Cards and
// questions carry the same fields the generation endpoints produce.
type File struct {
	Flashcards []FlashcardSeed `yaml:"flashcards"`
	Questions  []QuestionSeed  `yaml:"questions"`
}

type FlashcardSeed struct {
	Front      string   `yaml:"front"`
	Back       string   `yaml:"back"`
	Level      string   `yaml:"level"`
	Topic      string   `yaml:"topic"`
	Difficulty string   `yaml:"difficulty"`
	Tags       []string `yaml:"tags"`
}

type QuestionSeed struct {
	Question      string   `yaml:"question"`
	OptionA       string   `yaml:"option_a"`
	OptionB       string   `yaml:"option_b"`
	OptionC       string   `yaml:"option_c"`
	OptionD       string   `yaml:"option_d"`
	CorrectAnswer string   `yaml:"correct_answer"`
	Explanation   string   `yaml:"explanation"`
	Level         string   `yaml:"level"`
	Topic         string   `yaml:"topic"`
	Difficulty    string   `yaml:"difficulty"`
	QuestionType  string   `yaml:"question_type"`
	Tags          []string `yaml:"tags"`
}

type Importer struct {
	db            *gorm.DB
	log           *logger.Logger
	flashcardRepo repos.FlashcardRepo
	questionRepo  repos.QuizQuestionRepo
}

func NewImporter(db *gorm.DB, baseLog *logger.Logger, flashcardRepo repos.FlashcardRepo, questionRepo repos.QuizQuestionRepo) *Importer {
	return &Importer{
		db:            db,
		log:           baseLog.With("service", "SeedImporter"),
		flashcardRepo: flashcardRepo,
		questionRepo:  questionRepo,
	}
}

// ImportFromEnv loads the YAML file named by SEED_FILE, if set. Seeding only
// runs against an empty content table so restarts do not duplicate rows.
func (im *Importer) ImportFromEnv(ctx context.Context) error {
	path := os.Getenv("SEED_FILE")
	if path == "" {
		return nil
	}
	return im.Import(ctx, path)
}

func (im *Importer) Import(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	if err := im.importFlashcards(ctx, file.Flashcards); err != nil {
		return err
	}
	if err := im.importQuestions(ctx, file.Questions); err != nil {
		return err
	}
	return nil
}

func (im *Importer) importFlashcards(ctx context.Context, seeds []FlashcardSeed) error {
	if len(seeds) == 0 {
		return nil
	}
	count, err := im.flashcardRepo.Count(ctx, nil)
	if err != nil {
		return fmt.Errorf("count flashcards: %w", err)
	}
	if count > 0 {
		im.log.Info("Skipping flashcard seed, table not empty", "existing", count)
		return nil
	}

	cards := make([]*types.Flashcard, 0, len(seeds))
	for _, s := range seeds {
		if s.Front == "" || s.Back == "" || s.Level == "" || s.Topic == "" {
			im.log.Warn("Skipping incomplete flashcard seed", "front", s.Front)
			continue
		}
		difficulty := s.Difficulty
		if difficulty == "" {
			difficulty = "medium"
		}
		cards = append(cards, &types.Flashcard{
			Front:      s.Front,
			Back:       s.Back,
			Level:      s.Level,
			Topic:      s.Topic,
			Difficulty: difficulty,
			Tags:       marshalSeedTags(s.Tags),
		})
	}
	if len(cards) == 0 {
		return nil
	}
	if _, err := im.flashcardRepo.Create(ctx, nil, cards); err != nil {
		return fmt.Errorf("seed flashcards: %w", err)
	}
	im.log.Info("Seeded flashcards", "count", len(cards))
	return nil
}

func (im *Importer) importQuestions(ctx context.Context, seeds []QuestionSeed) error {
	if len(seeds) == 0 {
		return nil
	}
	existing, err := im.questionRepo.List(ctx, nil, "", "", "", 1)
	if err != nil {
		return fmt.Errorf("probe quiz questions: %w", err)
	}
	if len(existing) > 0 {
		im.log.Info("Skipping question seed, table not empty")
		return nil
	}

	questions := make([]*types.QuizQuestion, 0, len(seeds))
	for _, s := range seeds {
		if s.Question == "" || s.OptionA == "" || s.OptionB == "" || s.CorrectAnswer == "" || s.Level == "" || s.Topic == "" {
			im.log.Warn("Skipping incomplete question seed", "question", s.Question)
			continue
		}
		difficulty := s.Difficulty
		if difficulty == "" {
			difficulty = "medium"
		}
		questionType := s.QuestionType
		if questionType == "" {
			questionType = "multiple_choice"
		}
		q := &types.QuizQuestion{
			Question:      s.Question,
			OptionA:       s.OptionA,
			OptionB:       s.OptionB,
			OptionC:       s.OptionC,
			CorrectAnswer: s.CorrectAnswer,
			Explanation:   s.Explanation,
			Level:         s.Level,
			Topic:         s.Topic,
			Difficulty:    difficulty,
			QuestionType:  questionType,
			Tags:          marshalSeedTags(s.Tags),
		}
		if s.OptionD != "" {
			d := s.OptionD
			q.OptionD = &d
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil
	}
	if _, err := im.questionRepo.Create(ctx, nil, questions); err != nil {
		return fmt.Errorf("seed questions: %w", err)
	}
	im.log.Info("Seeded quiz questions", "count", len(questions))
	return nil
}

func marshalSeedTags(tags []string) datatypes.JSON {
	if len(tags) == 0 {
		return nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
