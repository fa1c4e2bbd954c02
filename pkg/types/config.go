package types

// MiB is one mebibyte.
const MiB = 1 << 20

// Default limits.
const (
	// DefaultMaxFileSize is the largest single input file accepted (50 MiB).
	DefaultMaxFileSize int64 = 50 * MiB

	// DefaultMemoryFactor multiplies total input size to estimate peak
	// memory use of a merge.
	DefaultMemoryFactor = 3

	// DefaultMemoryBudget is the estimate above which a merge needs
	// explicit confirmation (512 MiB).
	DefaultMemoryBudget int64 = 512 * MiB
)

// LimitsConfig holds resource caps enforced before planning.
type LimitsConfig struct {
	// MaxFileSize is the per-file size cap in bytes (default 50 MiB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size" mapstructure:"max_file_size"`

	// MemoryFactor is the multiplier applied to total input size for the
	// pre-flight memory estimate (default 3).
	MemoryFactor int `json:"memory_factor" yaml:"memory_factor" mapstructure:"memory_factor"`

	// MemoryBudget is the estimated memory above which the user must
	// confirm the operation (default 512 MiB).
	MemoryBudget int64 `json:"memory_budget" yaml:"memory_budget" mapstructure:"memory_budget"`
}

// WithDefaults fills zero fields with their defaults.
func (c LimitsConfig) WithDefaults() LimitsConfig {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.MemoryFactor <= 0 {
		c.MemoryFactor = DefaultMemoryFactor
	}
	if c.MemoryBudget <= 0 {
		c.MemoryBudget = DefaultMemoryBudget
	}
	return c
}

// SplitConfig holds settings for the split command.
type SplitConfig struct {
	// OutputDir is the directory split outputs are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// MergeConfig holds settings for the merge command.
type MergeConfig struct {
	// OutputDir is the directory the merged output is written to when no
	// explicit output file is given.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// ConversionBackend identifies the Word-to-HTML tool.
type ConversionBackend string

const (
	// BackendNative reads the .docx package directly.
	BackendNative ConversionBackend = "native"

	// BackendPandoc runs pandoc in a container (docker or podman).
	BackendPandoc ConversionBackend = "pandoc"
)

// ConversionConfig holds settings for the Word-to-PDF conversion.
type ConversionConfig struct {
	// Backend selects the Word-to-HTML tool: native or pandoc.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// OutputDir is the directory converted PDFs are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// CacheConfig holds settings for the fingerprint cache.
type CacheConfig struct {
	// Path is the SQLite file backing the cache. Empty keeps the cache in
	// memory for the lifetime of the process.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all settings.
type Config struct {
	Limits     LimitsConfig     `json:"limits" yaml:"limits" mapstructure:"limits"`
	Split      SplitConfig      `json:"split" yaml:"split" mapstructure:"split"`
	Merge      MergeConfig      `json:"merge" yaml:"merge" mapstructure:"merge"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Cache      CacheConfig      `json:"cache" yaml:"cache" mapstructure:"cache"`
}
