package model

import "time"

// Config is the full runtime configuration
type Config struct {
	HTTP        HTTPConfig        `json:"http" yaml:"http"`
	Cache       CacheConfig       `json:"cache" yaml:"cache"`
	Concurrency ConcurrencyConfig `json:"concurrency" yaml:"concurrency"`
	Rules       RulesConfig       `json:"rules" yaml:"rules"`
	Exclusions  ExclusionsConfig  `json:"exclusions" yaml:"exclusions"`
	Scoring     ScoringConfig     `json:"scoring" yaml:"scoring"`
	AI          AIConfig          `json:"ai" yaml:"ai"`
	Output      OutputConfig      `json:"output" yaml:"output"`
}

// HTTPConfig configures the page fetcher
type HTTPConfig struct {
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent         string        `json:"user_agent" yaml:"user_agent"`
	MaxBodyBytes      int64         `json:"max_body_bytes" yaml:"max_body_bytes"`
	InsecureTLS       bool          `json:"insecure_tls" yaml:"insecure_tls"`
	RespectRobots     bool          `json:"respect_robots" yaml:"respect_robots"`
	RequestsPerSecond float64       `json:"requests_per_second" yaml:"requests_per_second"`
	HTTPProxy         string        `json:"http_proxy,omitempty" yaml:"http_proxy,omitempty"`
	HTTPSProxy        string        `json:"https_proxy,omitempty" yaml:"https_proxy,omitempty"`
	NoProxy           string        `json:"no_proxy,omitempty" yaml:"no_proxy,omitempty"`
}

// CacheConfig configures the layered page/verdict cache
type CacheConfig struct {
	Enabled   bool          `json:"enabled" yaml:"enabled"`
	Dir       string        `json:"dir" yaml:"dir"`
	MemoryTTL time.Duration `json:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `json:"disk_ttl" yaml:"disk_ttl"`
}

// ConcurrencyConfig bounds the worker pools
type ConcurrencyConfig struct {
	Workers     int `json:"workers" yaml:"workers"`           // batch documents in flight
	RuleWorkers int `json:"rule_workers" yaml:"rule_workers"` // rules scored in parallel per document
	AIWorkers   int `json:"ai_workers" yaml:"ai_workers"`     // concurrent escalation calls
}

// RulesConfig locates the rule set
type RulesConfig struct {
	Path        string `json:"path,omitempty" yaml:"path,omitempty"` // file or directory of YAML rules
	UseBuiltin  bool   `json:"use_builtin" yaml:"use_builtin"`
}

// ExclusionsConfig configures the learned exclusion store
type ExclusionsConfig struct {
	Path         string `json:"path" yaml:"path"` // JSONL append log
	PromoteAfter int    `json:"promote_after" yaml:"promote_after"` // distinct rule/domain pairs before global promotion
}

// ScoringConfig is the document score aggregation policy.
// The compliance score starts at 100 and each finding subtracts
// riskScore scaled by its severity factor, floored at Floor.
type ScoringConfig struct {
	CriticalFactor float64 `json:"critical_factor" yaml:"critical_factor"`
	WarningFactor  float64 `json:"warning_factor" yaml:"warning_factor"`
	InfoFactor     float64 `json:"info_factor" yaml:"info_factor"`
	Floor          int     `json:"floor" yaml:"floor"`
}

// AIConfig configures the escalation verifier
type AIConfig struct {
	Provider          string        `json:"provider,omitempty" yaml:"provider,omitempty"` // openai, ollama, "" = disabled
	Model             string        `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey            string        `json:"-" yaml:"-"` // from environment, never persisted
	BaseURL           string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `json:"requests_per_second" yaml:"requests_per_second"`
	MaxTokens         int           `json:"max_tokens" yaml:"max_tokens"`
	CacheVerdicts     bool          `json:"cache_verdicts" yaml:"cache_verdicts"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `json:"verbose" yaml:"verbose"`
	IncludeFooter bool `json:"include_footer" yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Claimscan/0.3 (+https://github.com/medwatch/claimscan)",
			MaxBodyBytes:      2_000_000,
			RespectRobots:     true,
			RequestsPerSecond: 2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // resolved to ~/.claimscan/cache at startup
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:     4,
			RuleWorkers: 8,
			AIWorkers:   3,
		},
		Rules: RulesConfig{
			UseBuiltin: true,
		},
		Exclusions: ExclusionsConfig{
			Path:         "", // resolved to ~/.claimscan/exclusions.jsonl at startup
			PromoteAfter: 3,
		},
		Scoring: ScoringConfig{
			CriticalFactor: 1.0,
			WarningFactor:  0.5,
			InfoFactor:     0.2,
			Floor:          0,
		},
		AI: AIConfig{
			Provider:          "",
			Timeout:           20 * time.Second,
			RequestsPerSecond: 1,
			MaxTokens:         500,
			CacheVerdicts:     true,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
