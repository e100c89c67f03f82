package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// Config holds the entire application configuration. It is loaded once at
// startup and treated as read-only afterwards; the core components receive
// only the sections they need.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Terminal TerminalConfig `mapstructure:"terminal" yaml:"terminal"`
	Screen   ScreenConfig   `mapstructure:"screen" yaml:"screen"`
	Timing   TimingConfig   `mapstructure:"timing" yaml:"timing"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	Input    InputConfig    `mapstructure:"input" yaml:"input"`
	Safety   SafetyConfig   `mapstructure:"safety" yaml:"safety"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// TerminalConfig identifies the target trading terminal.
type TerminalConfig struct {
	// TitlePattern is the substring used to locate the terminal's main window.
	TitlePattern string `mapstructure:"title_pattern" yaml:"title_pattern"`
	// ProcessName narrows the window search to a specific executable.
	ProcessName string `mapstructure:"process_name" yaml:"process_name"`
	// AttachTimeout bounds the wait for the terminal window at session start.
	AttachTimeout time.Duration `mapstructure:"attach_timeout" yaml:"attach_timeout"`
}

// ScreenConfig describes the display the terminal renders on.
type ScreenConfig struct {
	// Display selects which display to capture.
	Display int `mapstructure:"display" yaml:"display"`
	// BaseWidth and BaseHeight are the resolution the region catalog and
	// template images were authored against.
	BaseWidth  int `mapstructure:"base_width" yaml:"base_width"`
	BaseHeight int `mapstructure:"base_height" yaml:"base_height"`
	// RegionsFile is the path to the named region catalog (YAML).
	RegionsFile string `mapstructure:"regions_file" yaml:"regions_file"`
	// TemplateDir holds the reference images for template matching.
	TemplateDir string `mapstructure:"template_dir" yaml:"template_dir"`
}

// TimingConfig holds every delay and timeout in the pipeline. These are policy
// values tuned against the real terminal, deliberately not constants.
type TimingConfig struct {
	// SettleDelay is the pause after each input step, letting the terminal
	// render its response before the next resolve.
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	// PollInterval is the sleep between full resolution chain passes.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// StrategyTimeout bounds a single strategy attempt.
	StrategyTimeout time.Duration `mapstructure:"strategy_timeout" yaml:"strategy_timeout"`
	// ChainTimeout bounds an entire resolve-with-retry call across all passes.
	ChainTimeout time.Duration `mapstructure:"chain_timeout" yaml:"chain_timeout"`
	// PostConditionTimeout bounds the wait for an action's follow-up element.
	PostConditionTimeout time.Duration `mapstructure:"post_condition_timeout" yaml:"post_condition_timeout"`
}

// ResolverConfig controls strategy selection and matching thresholds.
type ResolverConfig struct {
	// Order is the explicit trial order for the hybrid chain. Fallback
	// behavior stays deterministic because this is configuration, not
	// registration order.
	Order []schemas.Strategy `mapstructure:"order" yaml:"order"`
	// OCRConfidence is the minimum recognizer confidence for a text match.
	OCRConfidence float64 `mapstructure:"ocr_confidence" yaml:"ocr_confidence"`
	// TemplateThreshold is the minimum normalized correlation for an image match.
	TemplateThreshold float64 `mapstructure:"template_threshold" yaml:"template_threshold"`
}

// InputConfig tunes the synthesizer.
type InputConfig struct {
	// KeystrokesPerSecond paces TypeText; zero disables pacing.
	KeystrokesPerSecond float64 `mapstructure:"keystrokes_per_second" yaml:"keystrokes_per_second"`
	// MouseMoveDelay is the pause between a pointer move and the click.
	MouseMoveDelay time.Duration `mapstructure:"mouse_move_delay" yaml:"mouse_move_delay"`
	// Hotkeys overrides the default binding table, keyed by action id.
	Hotkeys map[string]HotkeyOverride `mapstructure:"hotkeys" yaml:"hotkeys"`
}

// HotkeyOverride replaces one default hotkey binding.
type HotkeyOverride struct {
	Modifiers   []string `mapstructure:"modifiers" yaml:"modifiers"`
	Key         string   `mapstructure:"key" yaml:"key"`
	Description string   `mapstructure:"description" yaml:"description"`
}

// SafetyConfig is the process-wide risk policy. The gate reads it as an
// immutable snapshot; nothing in the core ever writes it.
type SafetyConfig struct {
	// PaperTradingOnly rejects every order-affecting action unless the
	// session is attached to a paper trading terminal.
	PaperTradingOnly bool `mapstructure:"paper_trading_only" yaml:"paper_trading_only"`
	// MaxOrderQuantity rejects orders above this share count.
	MaxOrderQuantity int `mapstructure:"max_order_quantity" yaml:"max_order_quantity"`
	// MaxOrderValue rejects orders whose notional value exceeds this amount.
	MaxOrderValue float64 `mapstructure:"max_order_value" yaml:"max_order_value"`
	// ConfirmOrders requires an explicit confirm flag before transmission.
	ConfirmOrders bool `mapstructure:"confirm_orders" yaml:"confirm_orders"`
	// FailSafeEnabled honors the screen-corner abort gesture.
	FailSafeEnabled bool `mapstructure:"fail_safe_enabled" yaml:"fail_safe_enabled"`
}

// ServerConfig configures the agent boundary server.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "deskpilot")
	v.SetDefault("logger.log_file", "deskpilot.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Terminal --
	v.SetDefault("terminal.title_pattern", "Trader Workstation")
	v.SetDefault("terminal.process_name", "")
	v.SetDefault("terminal.attach_timeout", "30s")

	// -- Screen --
	v.SetDefault("screen.display", 0)
	v.SetDefault("screen.base_width", 1920)
	v.SetDefault("screen.base_height", 1080)
	v.SetDefault("screen.regions_file", "regions.yaml")
	v.SetDefault("screen.template_dir", "templates")

	// -- Timing --
	v.SetDefault("timing.settle_delay", "100ms")
	v.SetDefault("timing.poll_interval", "500ms")
	v.SetDefault("timing.strategy_timeout", "300ms")
	v.SetDefault("timing.chain_timeout", "10s")
	v.SetDefault("timing.post_condition_timeout", "5s")

	// -- Resolver --
	v.SetDefault("resolver.order", []string{"uia", "ocr", "image", "position"})
	v.SetDefault("resolver.ocr_confidence", 0.5)
	v.SetDefault("resolver.template_threshold", 0.8)

	// -- Input --
	v.SetDefault("input.keystrokes_per_second", 50.0)
	v.SetDefault("input.mouse_move_delay", "50ms")

	// -- Safety --
	v.SetDefault("safety.paper_trading_only", true)
	v.SetDefault("safety.max_order_quantity", 1000)
	v.SetDefault("safety.max_order_value", 100000.0)
	v.SetDefault("safety.confirm_orders", true)
	v.SetDefault("safety.fail_safe_enabled", true)

	// -- Server --
	v.SetDefault("server.addr", "127.0.0.1:8420")
}

// NewFromViper creates a validated configuration instance from a viper object.
func NewFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefault creates a configuration populated with defaults only.
func NewDefault() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewFromViper(v)
	if err != nil {
		// Defaults must always validate.
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Timing.StrategyTimeout <= 0 {
		return fmt.Errorf("timing.strategy_timeout must be positive")
	}
	if c.Timing.ChainTimeout < c.Timing.StrategyTimeout {
		return fmt.Errorf("timing.chain_timeout must be at least timing.strategy_timeout")
	}
	if c.Timing.PollInterval <= 0 {
		return fmt.Errorf("timing.poll_interval must be positive")
	}
	if c.Resolver.OCRConfidence < 0 || c.Resolver.OCRConfidence > 1 {
		return fmt.Errorf("resolver.ocr_confidence must be between 0.0 and 1.0")
	}
	if c.Resolver.TemplateThreshold < 0 || c.Resolver.TemplateThreshold > 1 {
		return fmt.Errorf("resolver.template_threshold must be between 0.0 and 1.0")
	}
	if len(c.Resolver.Order) == 0 {
		return fmt.Errorf("resolver.order must name at least one strategy")
	}
	seen := make(map[schemas.Strategy]bool, len(c.Resolver.Order))
	for _, s := range c.Resolver.Order {
		switch s {
		case schemas.StrategyUIA, schemas.StrategyOCR, schemas.StrategyImage, schemas.StrategyPosition:
		default:
			return fmt.Errorf("resolver.order contains unknown strategy %q", s)
		}
		if seen[s] {
			return fmt.Errorf("resolver.order lists strategy %q twice", s)
		}
		seen[s] = true
	}
	if c.Safety.MaxOrderQuantity <= 0 {
		return fmt.Errorf("safety.max_order_quantity must be positive")
	}
	if c.Safety.MaxOrderValue <= 0 {
		return fmt.Errorf("safety.max_order_value must be positive")
	}
	if c.Screen.BaseWidth <= 0 || c.Screen.BaseHeight <= 0 {
		return fmt.Errorf("screen.base_width and screen.base_height must be positive")
	}
	return nil
}
