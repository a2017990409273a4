package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dyluth/coursecat/pkg/catalog"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Store backends
const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// DefaultPort is used when neither the config file nor PORT sets one.
const DefaultPort = 3000

// Config represents the top-level coursecat.yml configuration
type Config struct {
	Version   string           `yaml:"version"`
	Variant   string           `yaml:"variant,omitempty"` // ordinal (default) or camel
	Server    *ServerConfig    `yaml:"server,omitempty"`
	Store     *StoreConfig     `yaml:"store,omitempty"`
	Collation *CollationConfig `yaml:"collation,omitempty"`
	Schema    *SchemaConfig    `yaml:"schema,omitempty"` // Overrides the variant's slot labels
	Routes    *RoutesConfig    `yaml:"routes,omitempty"` // Overrides the variant's routes

	schema  catalog.Schema
	locale  language.Tag
	timeout time.Duration
}

// ServerConfig specifies the HTTP listener
type ServerConfig struct {
	Port           int    `yaml:"port,omitempty"`
	RequestTimeout string `yaml:"request_timeout,omitempty"` // Go duration, default 10s
}

// StoreConfig selects and configures the catalog store backend
type StoreConfig struct {
	Backend string        `yaml:"backend,omitempty"`
	Redis   *RedisConfig  `yaml:"redis,omitempty"`
	Mongo   *MongoConfig  `yaml:"mongo,omitempty"`
	SQLite  *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// RedisConfig specifies the Redis store
type RedisConfig struct {
	URL       string `yaml:"url,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

// MongoConfig specifies the MongoDB store
type MongoConfig struct {
	URI        string `yaml:"uri,omitempty"`
	Database   string `yaml:"database,omitempty"`
	Collection string `yaml:"collection,omitempty"`
}

// SQLiteConfig specifies the SQLite store
type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

// CollationConfig specifies how course descriptions are ordered
type CollationConfig struct {
	Locale string `yaml:"locale,omitempty"` // BCP 47 tag, default "en"
}

// SchemaConfig overrides the year slot labels
type SchemaConfig struct {
	Slots []string `yaml:"slots"`
}

// RoutesConfig holds the three catalog routes
type RoutesConfig struct {
	All    *RouteConfig `yaml:"all,omitempty"`
	Sorted *RouteConfig `yaml:"sorted,omitempty"`
	Tagged *RouteConfig `yaml:"tagged,omitempty"`
}

// RouteConfig specifies one catalog route and its failure body
type RouteConfig struct {
	Path         string   `yaml:"path,omitempty"`
	ErrorKey     string   `yaml:"error_key,omitempty"`     // JSON key of the failure message
	ErrorMessage string   `yaml:"error_message,omitempty"` // Fixed failure text; empty echoes the store error
	Tags         []string `yaml:"tags,omitempty"`          // Tagged route only
}

// variant bundles the defaults of one deployed catalog convention
type variant struct {
	schema catalog.Schema
	routes RoutesConfig
}

var variants = map[string]variant{
	"ordinal": {
		schema: catalog.SchemaOrdinal,
		routes: RoutesConfig{
			All:    &RouteConfig{Path: "/all-courses", ErrorKey: "error", ErrorMessage: "Internal server error"},
			Sorted: &RouteConfig{Path: "/CourseSort", ErrorKey: "message"},
			Tagged: &RouteConfig{Path: "/BSITandBSIScourses", ErrorKey: "message", Tags: []string{"BSIT", "BSIS"}},
		},
	},
	"camel": {
		schema: catalog.SchemaCamel,
		routes: RoutesConfig{
			All:    &RouteConfig{Path: "/all-available-courses", ErrorKey: "error", ErrorMessage: "Internal server error"},
			Sorted: &RouteConfig{Path: "/backend-courses", ErrorKey: "message"},
			Tagged: &RouteConfig{Path: "/bsit-bsis-courses", ErrorKey: "message", Tags: []string{"BSIT", "BSIS"}},
		},
	},
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{Version: "1.0"}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return cfg
}

// Validate applies defaults and performs strict validation on the configuration
func (c *Config) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Variant == "" {
		c.Variant = "ordinal"
	}
	v, ok := variants[c.Variant]
	if !ok {
		return fmt.Errorf("unknown variant: %s (must be 'ordinal' or 'camel')", c.Variant)
	}

	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateCollation(); err != nil {
		return err
	}
	if err := c.validateSchema(v.schema); err != nil {
		return err
	}
	return c.validateRoutes(v.routes)
}

func (c *Config) validateServer() error {
	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.RequestTimeout == "" {
		c.Server.RequestTimeout = "10s"
	}
	timeout, err := time.ParseDuration(c.Server.RequestTimeout)
	if err != nil {
		return fmt.Errorf("server.request_timeout: invalid duration %q", c.Server.RequestTimeout)
	}
	if timeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	c.timeout = timeout
	return nil
}

func (c *Config) validateStore() error {
	if c.Store == nil {
		c.Store = &StoreConfig{}
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendRedis
	}

	// Every backend section gets its defaults so env overrides can switch backends
	if c.Store.Redis == nil {
		c.Store.Redis = &RedisConfig{}
	}
	if c.Store.Redis.URL == "" {
		c.Store.Redis.URL = "redis://localhost:6379/0"
	}
	if c.Store.Redis.Namespace == "" {
		c.Store.Redis.Namespace = "mongo-test"
	}

	if c.Store.Mongo == nil {
		c.Store.Mongo = &MongoConfig{}
	}
	if c.Store.Mongo.URI == "" {
		c.Store.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Store.Mongo.Database == "" {
		c.Store.Mongo.Database = "mongo-test"
	}
	if c.Store.Mongo.Collection == "" {
		c.Store.Mongo.Collection = "courses"
	}

	if c.Store.SQLite == nil {
		c.Store.SQLite = &SQLiteConfig{}
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = "coursecat.db"
	}

	switch c.Store.Backend {
	case BackendRedis, BackendMongo, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("invalid store.backend: %s (must be 'redis', 'mongo', or 'sqlite')", c.Store.Backend)
	}
}

func (c *Config) validateCollation() error {
	if c.Collation == nil {
		c.Collation = &CollationConfig{}
	}
	if c.Collation.Locale == "" {
		c.Collation.Locale = "en"
	}
	tag, err := language.Parse(c.Collation.Locale)
	if err != nil {
		return fmt.Errorf("collation.locale: invalid language tag %q: %w", c.Collation.Locale, err)
	}
	c.locale = tag
	return nil
}

func (c *Config) validateSchema(base catalog.Schema) error {
	c.schema = base
	if c.Schema == nil {
		return nil
	}

	if len(c.Schema.Slots) != catalog.SlotCount {
		return fmt.Errorf("schema.slots must list exactly %d labels, got %d", catalog.SlotCount, len(c.Schema.Slots))
	}
	custom := catalog.Schema{Name: "custom"}
	copy(custom.Slots[:], c.Schema.Slots)
	if err := custom.Validate(); err != nil {
		return err
	}
	c.schema = custom
	return nil
}

func (c *Config) validateRoutes(defaults RoutesConfig) error {
	if c.Routes == nil {
		c.Routes = &RoutesConfig{}
	}
	c.Routes.All = mergeRoute(c.Routes.All, defaults.All)
	c.Routes.Sorted = mergeRoute(c.Routes.Sorted, defaults.Sorted)
	c.Routes.Tagged = mergeRoute(c.Routes.Tagged, defaults.Tagged)

	paths := make(map[string]string)
	for name, route := range map[string]*RouteConfig{
		"all":    c.Routes.All,
		"sorted": c.Routes.Sorted,
		"tagged": c.Routes.Tagged,
	} {
		if route.Path == "" || route.Path[0] != '/' {
			return fmt.Errorf("routes.%s.path must start with '/', got %q", name, route.Path)
		}
		if i := strings.IndexFunc(route.Path, invalidPathRune); i >= 0 {
			r, _ := utf8.DecodeRuneInString(route.Path[i:])
			return fmt.Errorf("routes.%s.path %q: character %q is not allowed", name, route.Path, r)
		}
		if route.Path == "/healthz" {
			return fmt.Errorf("routes.%s.path: /healthz is reserved", name)
		}
		if other, exists := paths[route.Path]; exists {
			return fmt.Errorf("duplicate route path '%s' (routes '%s' and '%s')", route.Path, other, name)
		}
		paths[route.Path] = name
	}

	if len(c.Routes.Tagged.Tags) == 0 {
		return fmt.Errorf("routes.tagged.tags must not be empty")
	}
	return nil
}

// invalidPathRune reports runes that ServeMux would read as pattern syntax.
func invalidPathRune(r rune) bool {
	return r == '{' || r == '}' || unicode.IsSpace(r) || unicode.IsControl(r)
}

// mergeRoute fills unset fields of route from the variant default
func mergeRoute(route, def *RouteConfig) *RouteConfig {
	merged := *def
	if route == nil {
		return &merged
	}
	if route.Path != "" {
		merged.Path = route.Path
	}
	if route.ErrorKey != "" {
		merged.ErrorKey = route.ErrorKey
	}
	if route.ErrorMessage != "" {
		merged.ErrorMessage = route.ErrorMessage
	}
	if len(route.Tags) > 0 {
		merged.Tags = route.Tags
	}
	return &merged
}

// CatalogSchema returns the slot labels in effect. Valid after Validate.
func (c *Config) CatalogSchema() catalog.Schema {
	return c.schema
}

// Locale returns the parsed collation locale. Valid after Validate.
func (c *Config) Locale() language.Tag {
	return c.locale
}

// RequestTimeout returns the per-request store timeout. Valid after Validate.
func (c *Config) RequestTimeout() time.Duration {
	return c.timeout
}

// ApplyEnv overrides settings from environment variables:
// PORT, REDIS_URL, MONGO_URI and SQLITE_PATH.
// lookup has the signature of os.LookupEnv. Call Validate afterwards.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if port, ok := lookup("PORT"); ok && port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: must be a number", port)
		}
		if c.Server == nil {
			c.Server = &ServerConfig{}
		}
		c.Server.Port = n
	}

	if c.Store == nil {
		c.Store = &StoreConfig{}
	}
	if url, ok := lookup("REDIS_URL"); ok && url != "" {
		if c.Store.Redis == nil {
			c.Store.Redis = &RedisConfig{}
		}
		c.Store.Redis.URL = url
	}
	if uri, ok := lookup("MONGO_URI"); ok && uri != "" {
		if c.Store.Mongo == nil {
			c.Store.Mongo = &MongoConfig{}
		}
		c.Store.Mongo.URI = uri
	}
	if path, ok := lookup("SQLITE_PATH"); ok && path != "" {
		if c.Store.SQLite == nil {
			c.Store.SQLite = &SQLiteConfig{}
		}
		c.Store.SQLite.Path = path
	}

	return nil
}

// Load reads and validates coursecat.yml from the specified path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Resolve loads the config file at path (or the defaults when path is empty),
// applies environment overrides and validates the result.
func Resolve(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{Version: "1.0"}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
