package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Article is the resolved per-article record consumed by the pipeline.
// Resolution order is CLI flags > config file > defaults.
type Article struct {
	Title         string `json:"title"          yaml:"title"          validate:"required"`
	AuthorName    string `json:"author_name"    yaml:"author_name"    validate:"required"`
	AuthorURL     string `json:"author_url"     yaml:"author_url"`
	ArticleCredit string `json:"article_credit" yaml:"article_credit"`
	ImageLink     string `json:"image_link"     yaml:"image_link"`
	ImageCredit   string `json:"image_credit"   yaml:"image_credit"`
	ContentFile   string `json:"content_file"   yaml:"content_file"   validate:"required"`
	ImageFile     string `json:"image_file"     yaml:"image_file"     validate:"required"`
	Location      string `json:"location"       yaml:"location"`
}

// Config holds everything one invocation needs.
type Config struct {
	Article  Article        `json:"article"  yaml:"article"`
	Platform PlatformConfig `json:"platform" yaml:"platform"`
	Journal  JournalConfig  `json:"journal"  yaml:"journal"`
	Logging  LoggingConfig  `json:"logging"  yaml:"logging"`
}

// PlatformConfig describes how to reach the content platform.
type PlatformConfig struct {
	Origin  string        `json:"origin"  yaml:"origin"  validate:"required,url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// JournalConfig locates the run journal database.
type JournalConfig struct {
	Path string `json:"path" yaml:"path"`
}

// LoggingConfig selects log verbosity.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Defaults mirrors the values the publisher assumes when neither a config file
// nor flags supply them.
func Defaults() Config {
	return Config{
		Article: Article{
			Title:         "Draft content...",
			AuthorName:    "Temp author",
			AuthorURL:     "harvard.edu",
			ArticleCredit: "Temp byline...",
			ImageLink:     "https://i.prt.news/5eb5d392dc405ff764223dd90d0b1ffc.jpg",
			ImageCredit:   "testing_credit!",
			ContentFile:   "./example_article_content.txt",
			ImageFile:     "./example_image.jpg",
			Location:      "Entire U.S",
		},
		Platform: PlatformConfig{
			Origin:  "https://creators.newsbreak.com",
			Timeout: 30 * time.Second,
		},
		Journal: JournalConfig{Path: "publish_runs.db"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load resolves the final configuration: defaults, then the optional config
// file, then the flag-supplied overrides, merged as a pure function.
func Load(filePath string, flags Article) (Config, error) {
	cfg := Defaults()

	if filePath != "" {
		fileCfg, err := readFile(filePath)
		if err != nil {
			return Config{}, err
		}
		cfg = Merge(cfg, fileCfg)
	}

	cfg.Article = MergeArticle(cfg.Article, flags)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// readFile accepts JSON (the original format) or YAML, decided by extension.
// A file containing only article fields at the top level is also accepted.
func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if cfg.Article == (Article{}) {
			_ = yaml.Unmarshal(raw, &cfg.Article)
		}
	default:
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if cfg.Article == (Article{}) {
			_ = json.Unmarshal(raw, &cfg.Article)
		}
	}

	return cfg, nil
}

// Merge overlays non-zero override values on top of base.
func Merge(base, override Config) Config {
	base.Article = MergeArticle(base.Article, override.Article)

	if override.Platform.Origin != "" {
		base.Platform.Origin = override.Platform.Origin
	}
	if override.Platform.Timeout > 0 {
		base.Platform.Timeout = override.Platform.Timeout
	}
	if override.Journal.Path != "" {
		base.Journal.Path = override.Journal.Path
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

// MergeArticle overlays non-empty override fields on top of base.
func MergeArticle(base, override Article) Article {
	if override.Title != "" {
		base.Title = override.Title
	}
	if override.AuthorName != "" {
		base.AuthorName = override.AuthorName
	}
	if override.AuthorURL != "" {
		base.AuthorURL = override.AuthorURL
	}
	if override.ArticleCredit != "" {
		base.ArticleCredit = override.ArticleCredit
	}
	if override.ImageLink != "" {
		base.ImageLink = override.ImageLink
	}
	if override.ImageCredit != "" {
		base.ImageCredit = override.ImageCredit
	}
	if override.ContentFile != "" {
		base.ContentFile = override.ContentFile
	}
	if override.ImageFile != "" {
		base.ImageFile = override.ImageFile
	}
	if override.Location != "" {
		base.Location = override.Location
	}
	return base
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the resolved configuration before anything runs.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg.Article); err != nil {
		return fmt.Errorf("config: invalid article settings: %w", err)
	}
	if err := validate.Struct(cfg.Platform); err != nil {
		return fmt.Errorf("config: invalid platform settings: %w", err)
	}
	return nil
}
