package internal

import (
	"strings"
	"time"
)

type Config struct {
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=4000"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL,default=15s"`
	PresenceTimeout time.Duration `env:"PRESENCE_TIMEOUT,default=10s"`
	CensoredWords   string        `env:"CENSORED_WORDS"`
}

// CensoredWordList splits the comma-separated CENSORED_WORDS value.
// An unset variable yields an empty list, which disables moderation.
func (c Config) CensoredWordList() []string {
	var words []string
	for _, word := range strings.Split(c.CensoredWords, ",") {
		if word = strings.TrimSpace(word); word != "" {
			words = append(words, word)
		}
	}
	return words
}
