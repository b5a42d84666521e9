// Package config assembles the operator configuration from the environment
// and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. Each key is also read from the environment variable of
// the same name in upper case.
const (
	KeyNamespace               = "kubernetes_namespace"
	KeyPodName                 = "kubernetes_pod_name"
	KeyEnableLeaderElection    = "enable_leader_election"
	KeyReleaseLeaseOnShutdown  = "leader_election_release_on_shutdown"
	KeyOpenTelemetryEndpoint   = "opentelemetry_endpoint_url"
	KeyMetricsBindAddress      = "metrics_bind_address"
	KeyHealthProbeBindAddress  = "health_probe_bind_address"
	KeyMaxConcurrentReconciles = "max_concurrent_reconciles"
	KeyLogLevel                = "log_level"
)

// Config holds everything main needs to wire the operator.
type Config struct {
	Namespace               string
	PodName                 string
	EnableLeaderElection    bool
	ReleaseLeaseOnShutdown  bool
	OpenTelemetryEndpoint   string
	MetricsBindAddress      string
	HealthProbeBindAddress  string
	MaxConcurrentReconciles int
	LogLevel                string
}

var flagKeys = map[string]string{
	"namespace":                           KeyNamespace,
	"pod-name":                            KeyPodName,
	"leader-elect":                        KeyEnableLeaderElection,
	"leader-election-release-on-shutdown": KeyReleaseLeaseOnShutdown,
	"otel-endpoint":                       KeyOpenTelemetryEndpoint,
	"metrics-bind-address":                KeyMetricsBindAddress,
	"health-probe-bind-address":           KeyHealthProbeBindAddress,
	"max-concurrent-reconciles":           KeyMaxConcurrentReconciles,
	"log-level":                           KeyLogLevel,
}

// AddFlags registers the operator flags on flags.
func AddFlags(flags *pflag.FlagSet) {
	flags.String("namespace", "default", "Namespace holding the leader election lease.")
	flags.String("pod-name", "", "Name of the pod running the operator.")
	flags.Bool("leader-elect", false, "Enable leader election.")
	flags.Bool("leader-election-release-on-shutdown", false, "Delete the lease when the operator stops.")
	flags.String("otel-endpoint", "", "OTLP/HTTP endpoint for traces. Tracing is disabled when empty.")
	flags.String("metrics-bind-address", ":8080", "Address the metrics and diagnostics endpoint binds to.")
	flags.String("health-probe-bind-address", ":8081", "Address the health probe endpoint binds to.")
	flags.Int("max-concurrent-reconciles", 4, "Maximum concurrent reconciles per claim kind.")
	flags.String("log-level", "info", "Log level: debug, info or error.")
}

// Load builds a Config from parsed flags and the environment. Flags set on the
// command line win over the environment.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	cfg := &Config{
		Namespace:               v.GetString(KeyNamespace),
		PodName:                 v.GetString(KeyPodName),
		EnableLeaderElection:    v.GetBool(KeyEnableLeaderElection),
		ReleaseLeaseOnShutdown:  v.GetBool(KeyReleaseLeaseOnShutdown),
		OpenTelemetryEndpoint:   v.GetString(KeyOpenTelemetryEndpoint),
		MetricsBindAddress:      v.GetString(KeyMetricsBindAddress),
		HealthProbeBindAddress:  v.GetString(KeyHealthProbeBindAddress),
		MaxConcurrentReconciles: v.GetInt(KeyMaxConcurrentReconciles),
		LogLevel:                strings.ToLower(v.GetString(KeyLogLevel)),
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "default"
	}
	if cfg.MaxConcurrentReconciles < 1 {
		return nil, fmt.Errorf("%s must be positive, got %d", KeyMaxConcurrentReconciles, cfg.MaxConcurrentReconciles)
	}
	return cfg, nil
}
