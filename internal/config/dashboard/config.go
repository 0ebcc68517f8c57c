package dashboard_config

import (
	"time"

	"github.com/NordCoder/homelab/internal/obs"
	"github.com/NordCoder/homelab/internal/obs/retry"
	pg "github.com/NordCoder/homelab/internal/repository/postgres"
)

type App struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Env     string `mapstructure:"env" yaml:"env"`
	Version string `mapstructure:"version" yaml:"version"`
}

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr" yaml:"http_addr"`
	GRPCAddr        string        `mapstructure:"grpc_addr" yaml:"grpc_addr"`
	GRPCEnable      bool          `mapstructure:"grpc_enable" yaml:"grpc_enable"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout" yaml:"graceful_timeout"`
}

type Storage struct {
	Driver      string `mapstructure:"driver" yaml:"driver"` // postgres | memory
	AutoMigrate bool   `mapstructure:"auto_migrate" yaml:"auto_migrate"`
}

type Probe struct {
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent          string        `mapstructure:"user_agent" yaml:"user_agent"`
	FollowRedirects    bool          `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	Concurrency        int           `mapstructure:"concurrency" yaml:"concurrency"`
}

type Auth struct {
	SessionSecret string        `mapstructure:"session_secret" yaml:"-"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	CookieName    string        `mapstructure:"cookie_name" yaml:"cookie_name"`
	CookieDomain  string        `mapstructure:"cookie_domain" yaml:"cookie_domain"`
	CookiePath    string        `mapstructure:"cookie_path" yaml:"cookie_path"`
	CookieSecure  bool          `mapstructure:"cookie_secure" yaml:"cookie_secure"`
}

type Events struct {
	Enable        bool          `mapstructure:"enable" yaml:"enable"`
	Brokers       []string      `mapstructure:"brokers" yaml:"brokers"`
	Topic         string        `mapstructure:"topic" yaml:"topic"`
	Workers       int           `mapstructure:"workers" yaml:"workers"`
	BatchSize     int           `mapstructure:"batch_size" yaml:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	InProgressTTL time.Duration `mapstructure:"in_progress_ttl" yaml:"in_progress_ttl"`

	PublishAttempts int           `mapstructure:"publish_attempts" yaml:"publish_attempts"`
	RetryBase       time.Duration `mapstructure:"retry_base" yaml:"retry_base"`
	RetryMax        time.Duration `mapstructure:"retry_max" yaml:"retry_max"`
	RetryJitter     float64       `mapstructure:"retry_jitter" yaml:"retry_jitter"`
}

func (e *Events) AsPublishConfig() retry.PublishConfig {
	return retry.PublishConfig{
		Attempts: e.PublishAttempts,
		Base:     e.RetryBase,
		Max:      e.RetryMax,
		Jitter:   e.RetryJitter,
	}
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable" yaml:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name" yaml:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio" yaml:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

type Config struct {
	App     App       `mapstructure:"app" yaml:"app"`
	Server  Server    `mapstructure:"server" yaml:"server"`
	Storage Storage   `mapstructure:"storage" yaml:"storage"`
	DB      pg.Config `mapstructure:"db" yaml:"db"`
	Probe   Probe     `mapstructure:"probe" yaml:"probe"`
	Auth    Auth      `mapstructure:"auth" yaml:"auth"`
	Events  Events    `mapstructure:"events" yaml:"events"`
	OTEL    OTEL      `mapstructure:"otel" yaml:"otel"`
	Log     Log       `mapstructure:"log" yaml:"log"`
}

func (c *Config) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
