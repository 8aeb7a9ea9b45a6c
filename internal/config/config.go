package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ConfigFileName = ".netgraphx"
	ConfigFileType = "yaml"
)

// Config holds the configuration for netgraphx.
type Config struct {
	Oracle    OracleConfig `mapstructure:"oracle"`
	Render    RenderConfig `mapstructure:"render"`
	Filter    FilterConfig `mapstructure:"filter"`
	Neo4j     Neo4jConfig  `mapstructure:"neo4j"`
	Server    ServerConfig `mapstructure:"server"`
	Log       LogConfig    `mapstructure:"log"`
	OutputDir string       `mapstructure:"output_dir"`
	Format    string       `mapstructure:"format" validate:"oneof=text json cypher dot"`
	Update    bool         `mapstructure:"update"`
	InputFile string       `mapstructure:"-"`
}

// OracleConfig holds the inference service settings.
type OracleConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model" validate:"required"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RetryAttempts int           `mapstructure:"retry_attempts" validate:"min=1,max=10"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff" validate:"gte=0"`
}

// RenderConfig holds the layout and Graphviz settings.
type RenderConfig struct {
	Command    string            `mapstructure:"command" validate:"required"`
	Layout     string            `mapstructure:"layout" validate:"oneof=spring force circular"`
	Width      float64           `mapstructure:"width" validate:"gt=0"`
	Height     float64           `mapstructure:"height" validate:"gt=0"`
	Iterations int               `mapstructure:"iterations" validate:"min=1"`
	Seed       int64             `mapstructure:"seed"`
	Icons      map[string]string `mapstructure:"icons"`
	Timeout    time.Duration     `mapstructure:"timeout" validate:"gt=0"`
}

// FilterConfig lists the substrings that mark external infrastructure.
type FilterConfig struct {
	Keywords []string `mapstructure:"keywords"`
}

// Neo4jConfig holds the Neo4j connection settings.
type Neo4jConfig struct {
	URI         string `mapstructure:"uri"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DockerImage string `mapstructure:"docker_image"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Model:         "gemini-2.0-flash",
			Timeout:       60 * time.Second,
			RetryAttempts: 1,
			RetryBackoff:  2 * time.Second,
		},
		Render: RenderConfig{
			Command:    "neato",
			Layout:     "spring",
			Width:      600,
			Height:     400,
			Iterations: 50,
			Icons: map[string]string{
				"server": "icons/file-server.png",
				"router": "icons/router.png",
				"pc":     "icons/pc.png",
				"switch": "icons/switch.png",
				"other":  "icons/cloud.png",
			},
			Timeout: 30 * time.Second,
		},
		Filter: FilterConfig{
			Keywords: []string{"isp", "backup", "internet", "printer", "cloud", "wan", "firewall"},
		},
		Neo4j: Neo4jConfig{
			URI:         "bolt://localhost:7687",
			User:        "neo4j",
			Password:    "",
			DockerImage: "neo4j:community",
		},
		Server:    ServerConfig{Listen: ":8080"},
		Log:       LogConfig{Level: "info"},
		OutputDir: "out",
		Format:    "text",
		Update:    false,
	}
}

// Load reads the configuration from the .netgraphx.yaml file, the
// environment and an optional .env file.
func Load() (*Config, error) {
	// Missing .env is fine; credentials may come from the real environment.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	setDefaults(v, DefaultConfig())

	if err := v.BindEnv("oracle.api_key", "NETGRAPHX_API_KEY", "API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}
	v.SetEnvPrefix("NETGRAPHX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("oracle.api_key", d.Oracle.APIKey)
	v.SetDefault("oracle.model", d.Oracle.Model)
	v.SetDefault("oracle.timeout", d.Oracle.Timeout)
	v.SetDefault("oracle.retry_attempts", d.Oracle.RetryAttempts)
	v.SetDefault("oracle.retry_backoff", d.Oracle.RetryBackoff)
	v.SetDefault("render.command", d.Render.Command)
	v.SetDefault("render.layout", d.Render.Layout)
	v.SetDefault("render.width", d.Render.Width)
	v.SetDefault("render.height", d.Render.Height)
	v.SetDefault("render.iterations", d.Render.Iterations)
	v.SetDefault("render.seed", d.Render.Seed)
	v.SetDefault("render.icons", d.Render.Icons)
	v.SetDefault("render.timeout", d.Render.Timeout)
	v.SetDefault("filter.keywords", d.Filter.Keywords)
	v.SetDefault("neo4j.uri", d.Neo4j.URI)
	v.SetDefault("neo4j.user", d.Neo4j.User)
	v.SetDefault("neo4j.password", d.Neo4j.Password)
	v.SetDefault("neo4j.docker_image", d.Neo4j.DockerImage)
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("format", d.Format)
	v.SetDefault("update", d.Update)
}

// LoadAndMerge loads configuration from file and merges it with CLI flags.
// Priority: flags > environment > config file > defaults
func LoadAndMerge(cmd *cobra.Command, args []string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("update") {
		cfg.Update, _ = flags.GetBool("update")
	}
	if flags.Changed("output") {
		cfg.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("model") {
		cfg.Oracle.Model, _ = flags.GetString("model")
	}
	if flags.Changed("layout") {
		cfg.Render.Layout, _ = flags.GetString("layout")
	}
	if flags.Changed("seed") {
		cfg.Render.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("listen") {
		cfg.Server.Listen, _ = flags.GetString("listen")
	}
	if flags.Changed("neo4j-uri") {
		cfg.Neo4j.URI, _ = flags.GetString("neo4j-uri")
	}
	if flags.Changed("neo4j-user") {
		cfg.Neo4j.User, _ = flags.GetString("neo4j-user")
	}
	if flags.Changed("neo4j-pass") {
		cfg.Neo4j.Password, _ = flags.GetString("neo4j-pass")
	}

	if len(args) > 0 {
		cfg.InputFile = args[0]
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid configuration: %s failed on %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, ok := cfg.Render.Icons["other"]; !ok {
		return fmt.Errorf("invalid configuration: render.icons must define an \"other\" icon")
	}
	return nil
}

// ValidateNeo4j checks that the Neo4j settings needed for --update are present.
func ValidateNeo4j(cfg *Neo4jConfig) error {
	if cfg.URI == "" || cfg.User == "" || cfg.Password == "" {
		return fmt.Errorf("neo4j-uri, neo4j-user, and neo4j-pass are required when using --update. Please configure them in %s.%s or pass them as flags", ConfigFileName, ConfigFileType)
	}
	return nil
}

// Save writes the configuration to a .netgraphx.yaml file in the current directory.
// The oracle API key is never written; keep it in .env or the environment.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = fmt.Sprintf("%s.%s", ConfigFileName, ConfigFileType)
	}

	v := viper.New()
	v.Set("oracle.model", cfg.Oracle.Model)
	v.Set("oracle.timeout", cfg.Oracle.Timeout.String())
	v.Set("oracle.retry_attempts", cfg.Oracle.RetryAttempts)
	v.Set("oracle.retry_backoff", cfg.Oracle.RetryBackoff.String())
	v.Set("render.command", cfg.Render.Command)
	v.Set("render.layout", cfg.Render.Layout)
	v.Set("render.icons", cfg.Render.Icons)
	v.Set("render.timeout", cfg.Render.Timeout.String())
	v.Set("filter.keywords", cfg.Filter.Keywords)
	v.Set("neo4j.uri", cfg.Neo4j.URI)
	v.Set("neo4j.user", cfg.Neo4j.User)
	v.Set("neo4j.password", cfg.Neo4j.Password)
	v.Set("neo4j.docker_image", cfg.Neo4j.DockerImage)
	v.Set("output_dir", cfg.OutputDir)

	// Ensure the directory exists
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Contains the Neo4j password
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set secure permissions on config file: %w", err)
	}

	return nil
}

// Exists checks if a config file exists in the current directory.
func Exists() bool {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(".")

	err := v.ReadInConfig()
	return err == nil
}
