package nlp

import (
	"fmt"

	"github.com/spf13/viper"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

type lexiconFile struct {
	Tables     []tableFile      `mapstructure:"tables"`
	Vocabulary []vocabularyFile `mapstructure:"vocabulary"`
}

type tableFile struct {
	Language   string         `mapstructure:"language"`
	Negations  []string       `mapstructure:"negations"`
	Categories []categoryFile `mapstructure:"categories"`
}

type categoryFile struct {
	Name    string   `mapstructure:"name"`
	Emotion string   `mapstructure:"emotion"`
	Weight  float64  `mapstructure:"weight"`
	Terms   []string `mapstructure:"terms"`
}

type vocabularyFile struct {
	Name  string   `mapstructure:"name"`
	Terms []string `mapstructure:"terms"`
}

// LoadLexicon reads keyword tables from a TOML file. When the file has no
// [[vocabulary]] groups the built-in vocabulary is used.
//
//	[[tables]]
//	language = "en"
//	negations = ["no", "not"]
//
//	  [[tables.categories]]
//	  name = "fomo"
//	  emotion = "FOMO"
//	  weight = -0.8
//	  terms = ["fomo", "buy now"]
func LoadLexicon(path string) (*Lexicon, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.Wrap(err, "failed to read lexicon file")
	}

	var file lexiconFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse lexicon file")
	}

	tables := make([]Table, 0, len(file.Tables))
	for _, tf := range file.Tables {
		t := Table{
			Language:  models.Language(tf.Language),
			Negations: tf.Negations,
		}
		for _, cf := range tf.Categories {
			t.Categories = append(t.Categories, Category{
				Name:    cf.Name,
				Emotion: models.EmotionType(cf.Emotion),
				Weight:  cf.Weight,
				Terms:   cf.Terms,
			})
		}
		tables = append(tables, t)
	}

	vocabulary := DefaultVocabulary()
	if len(file.Vocabulary) > 0 {
		vocabulary = vocabulary[:0]
		for _, vf := range file.Vocabulary {
			vocabulary = append(vocabulary, VocabularyGroup{Name: vf.Name, Terms: vf.Terms})
		}
	}

	lex, err := NewLexicon(tables, vocabulary)
	if err != nil {
		return nil, fmt.Errorf("lexicon file %s: %w", path, err)
	}
	return lex, nil
}
