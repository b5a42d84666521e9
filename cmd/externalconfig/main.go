package main

import (
	"context"
	goflag "flag"
	"os"
	"time"

	"github.com/spf13/pflag"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/config"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"externalconfig/pkg/adapters"
	configv1alpha1 "externalconfig/pkg/api/v1alpha1"
	"externalconfig/pkg/config"
	"externalconfig/pkg/controllers/claim"
	"externalconfig/pkg/discovery"
	"externalconfig/pkg/leaderelection"
	"externalconfig/pkg/observability/diagnostics"
	"externalconfig/pkg/observability/tracing"
	"externalconfig/pkg/operator"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")

	version = "dev"
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(configv1alpha1.AddToScheme(scheme))
}

func main() {
	zapOptions := zap.Options{}
	zapOptions.BindFlags(goflag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	config.AddFlags(pflag.CommandLine)
	pflag.Parse()

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		ctrl.SetLogger(zap.New(zap.UseFlagOptions(&zapOptions)))
		setupLog.Error(err, "invalid configuration")
		os.Exit(1)
	}
	configureLogging(&zapOptions, cfg.LogLevel)
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&zapOptions)))

	ctx := ctrl.SetupSignalHandler()

	shutdownTracing, err := tracing.Setup(ctx, cfg.OpenTelemetryEndpoint, version)
	if err != nil {
		setupLog.Error(err, "unable to set up tracing")
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			setupLog.Error(err, "flush traces")
		}
	}()

	restConfig := ctrl.GetConfigOrDie()
	leaseClient, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		setupLog.Error(err, "unable to create client")
		os.Exit(1)
	}

	state := diagnostics.NewState(diagnostics.DefaultReporter, time.Now())
	runner := &operator.Runner{
		Elector: leaderelection.New(leaseClient,
			leaderelection.Identity{PodName: cfg.PodName, Namespace: cfg.Namespace},
			leaderelection.Options{Enabled: cfg.EnableLeaderElection, ReleaseOnShutdown: cfg.ReleaseLeaseOnShutdown}),
		Start:  func(ctx context.Context) error { return startManager(ctx, restConfig, cfg, state) },
		Logger: ctrl.Log.WithName("operator"),
	}

	setupLog.Info("starting operator", "version", version, "leaderElection", cfg.EnableLeaderElection)
	if err := runner.Run(ctx); err != nil {
		setupLog.Error(err, "problem running operator")
		os.Exit(1)
	}
}

// startManager builds a fresh manager for one leadership term and blocks
// until ctx ends.
func startManager(ctx context.Context, restConfig *rest.Config, cfg *config.Config, state *diagnostics.State) error {
	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress:   cfg.MetricsBindAddress,
			ExtraHandlers: state.Handlers(),
		},
		HealthProbeBindAddress: cfg.HealthProbeBindAddress,
		Controller: ctrlconfig.Controller{
			// Controllers are rebuilt with the same names on every term.
			SkipNameValidation: ptr.To(true),
		},
	})
	if err != nil {
		return err
	}

	discoverer := discovery.New(adapters.NewControllerRuntimeClient(mgr.GetClient()), nil)
	options := claim.Options{MaxConcurrentReconciles: cfg.MaxConcurrentReconciles, Diagnostics: state}

	if err := claim.SetupConfigMapClaims(mgr, discoverer, options); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "ConfigMapClaim")
		return err
	}
	if err := claim.SetupSecretClaims(mgr, discoverer, options); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "SecretClaim")
		return err
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		return err
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		return err
	}

	setupLog.Info("starting manager")
	return mgr.Start(ctx)
}

// configureLogging applies LOG_LEVEL unless the zap flags already chose a
// level. Debug logging also switches to the development encoder.
func configureLogging(options *zap.Options, logLevel string) {
	if options.Level != nil || logLevel == "" {
		return
	}
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return
	}
	options.Level = uberzap.NewAtomicLevelAt(level)
	options.Development = level == zapcore.DebugLevel
}
