package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Term is one parliamentary term and the article listing its members.
type Term struct {
	ID  int
	URL string
}

// DefaultTerms lists the Sejm articles for terms I to VII.
var DefaultTerms = map[string]string{
	"1": "https://pl.wikipedia.org/w/index.php?title=Pos%C5%82owie_na_Sejm_Rzeczypospolitej_Polskiej_I_kadencji&stable=0",
	"2": "https://pl.wikipedia.org/wiki/Pos%C5%82owie_na_Sejm_Rzeczypospolitej_Polskiej_II_kadencji",
	"3": "https://pl.wikipedia.org/wiki/Pos%C5%82owie_na_Sejm_Rzeczypospolitej_Polskiej_III_kadencji",
	"4": "https://pl.wikipedia.org/wiki/Pos%C5%82owie_na_Sejm_Rzeczypospolitej_Polskiej_IV_kadencji",
	"5": "https://pl.wikipedia.org/wiki/Pos%C5%82owie_na_Sejm_Rzeczypospolitej_Polskiej_V_kadencji",
	"6": "https://pl.wikipedia.org/wiki/Pos%C5%82owie_na_Sejm_Rzeczypospolitej_Polskiej_VI_kadencji",
	"7": "https://pl.wikipedia.org/wiki/Pos%C5%82owie_na_Sejm_Rzeczypospolitej_Polskiej_VII_kadencji",
}

// Config holds the settings of one run.
type Config struct {
	DB        string
	CacheDir  string
	APIURL    string
	UserAgent string
	BatchSize int
	KeepGoing bool
	LogFile   string
	Verbose   bool
	Terms     []Term
}

// New returns a viper instance with defaults, POSLOWIE_* environment
// variables and an optional poslowie.yaml in the working directory.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("poslowie")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("POSLOWIE")
	// POSLOWIE_CACHE_DIR maps to "cache-dir"
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db", "poslowie.db")
	v.SetDefault("cache-dir", ".cache")
	v.SetDefault("api-url", "https://pl.wikipedia.org/w/api.php")
	v.SetDefault("user-agent", "poslowie/0.1 (Sejm members scraper)")
	v.SetDefault("batch-size", 50)
	v.SetDefault("keep-going", false)
	v.SetDefault("log-file", "")
	v.SetDefault("verbose", false)
	v.SetDefault("terms", DefaultTerms)
	return v
}

// Load reads the config file, if any, and resolves the settings.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	terms, err := ParseTerms(v.GetStringMapString("terms"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		DB:        v.GetString("db"),
		CacheDir:  v.GetString("cache-dir"),
		APIURL:    v.GetString("api-url"),
		UserAgent: v.GetString("user-agent"),
		BatchSize: v.GetInt("batch-size"),
		KeepGoing: v.GetBool("keep-going"),
		LogFile:   v.GetString("log-file"),
		Verbose:   v.GetBool("verbose"),
		Terms:     terms,
	}
	if cfg.BatchSize <= 0 {
		return Config{}, fmt.Errorf("batch-size must be positive, got %d", cfg.BatchSize)
	}
	return cfg, nil
}

// ParseTerms converts a term id -> URL table into terms ordered by id.
func ParseTerms(m map[string]string) ([]Term, error) {
	terms := make([]Term, 0, len(m))
	for k, url := range m {
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid term id %q", k)
		}
		if strings.TrimSpace(url) == "" {
			return nil, fmt.Errorf("term %d has no url", id)
		}
		terms = append(terms, Term{ID: id, URL: url})
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].ID < terms[j].ID })
	return terms, nil
}
