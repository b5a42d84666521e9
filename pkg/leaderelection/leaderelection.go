// Package leaderelection elects a single active operator replica through a
// coordination Lease owned by the leader's Pod.
package leaderelection

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-logr/logr"
	coordinationv1 "k8s.io/api/coordination/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/clock"
	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"externalconfig/pkg/core"
	"externalconfig/pkg/observability/metrics"
)

// Lease defaults.
const (
	LeaseName            = "external-config-operator-leader-election"
	LeaseDurationSeconds = int32(20)
	DefaultStaleAfter    = 2 * time.Minute
	DefaultRetryInterval = 10 * time.Second
	DefaultRefresh       = 10 * time.Second
)

// Identity names the pod competing for leadership.
type Identity struct {
	PodName   string
	Namespace string
}

// Options configure a Coordinator. Zero durations select the defaults.
type Options struct {
	Enabled           bool
	ReleaseOnShutdown bool
	RetryInterval     time.Duration
	RefreshInterval   time.Duration
	StaleAfter        time.Duration
}

// Coordinator claims, renews and releases the operator lease.
type Coordinator struct {
	client   client.Client
	clock    clock.WithTicker
	identity Identity
	options  Options
	logger   logr.Logger
}

// New returns a Coordinator using the real clock.
func New(kubeClient client.Client, identity Identity, options Options) *Coordinator {
	return NewWithClock(kubeClient, clock.RealClock{}, identity, options)
}

// NewWithClock returns a Coordinator reading time from clk.
func NewWithClock(kubeClient client.Client, clk clock.WithTicker, identity Identity, options Options) *Coordinator {
	if options.RetryInterval <= 0 {
		options.RetryInterval = DefaultRetryInterval
	}
	if options.RefreshInterval <= 0 {
		options.RefreshInterval = DefaultRefresh
	}
	if options.StaleAfter <= 0 {
		options.StaleAfter = DefaultStaleAfter
	}
	return &Coordinator{
		client:   kubeClient,
		clock:    clk,
		identity: identity,
		options:  options,
		logger:   ctrl.Log.WithName("leader-election").WithValues("pod", identity.PodName, "lease", LeaseName),
	}
}

// Enabled reports whether election is requested and the pod identity is known.
// A disabled coordinator means the replica always acts as leader.
func (coordinator *Coordinator) Enabled() bool {
	return coordinator.options.Enabled && coordinator.identity.PodName != "" && coordinator.identity.Namespace != ""
}

// ReleaseOnShutdown reports whether the lease should be deleted on exit.
func (coordinator *Coordinator) ReleaseOnShutdown() bool {
	return coordinator.options.ReleaseOnShutdown
}

// ClaimLeadership makes one attempt to become leader. It returns nil when this
// pod holds the lease, ErrLeaseExpired after removing an abandoned lease and
// ErrLeaseHeldByAnotherPod when someone else leads.
func (coordinator *Coordinator) ClaimLeadership(ctx context.Context) error {
	var pod corev1.Pod
	if err := coordinator.client.Get(ctx, types.NamespacedName{Namespace: coordinator.identity.Namespace, Name: coordinator.identity.PodName}, &pod); err != nil {
		return core.NewPlatformAPIError("get pod", err)
	}

	now := metav1.NewMicroTime(coordinator.clock.Now())
	lease := &coordinationv1.Lease{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: coordinator.identity.Namespace,
			Name:      LeaseName,
			OwnerReferences: []metav1.OwnerReference{{
				APIVersion:         "v1",
				Kind:               "Pod",
				Name:               pod.Name,
				UID:                pod.UID,
				Controller:         ptr.To(true),
				BlockOwnerDeletion: ptr.To(false),
			}},
		},
		Spec: coordinationv1.LeaseSpec{
			HolderIdentity:       ptr.To(coordinator.identity.PodName),
			AcquireTime:          &now,
			RenewTime:            &now,
			LeaseDurationSeconds: ptr.To(LeaseDurationSeconds),
		},
	}
	if err := coordinator.client.Create(ctx, lease); err != nil && !apierrors.IsAlreadyExists(err) {
		return core.NewPlatformAPIError("create lease", err)
	}

	current, err := coordinator.getLease(ctx)
	if err != nil {
		return err
	}

	if renew := current.Spec.RenewTime; renew != nil && coordinator.clock.Since(renew.Time) > coordinator.options.StaleAfter {
		coordinator.logger.Info("removing abandoned lease", "holder", ptr.Deref(current.Spec.HolderIdentity, ""), "renewTime", renew.Time)
		if err := coordinator.client.Delete(ctx, current, client.Preconditions{UID: ptr.To(current.UID)}); err != nil && !apierrors.IsNotFound(err) {
			return core.NewPlatformAPIError("delete stale lease", err)
		}
		return core.ErrLeaseExpired
	}

	holder := ptr.Deref(current.Spec.HolderIdentity, "")
	if holder != coordinator.identity.PodName {
		metrics.SetLeader(coordinator.identity.PodName, false)
		return fmt.Errorf("%w: %s", core.ErrLeaseHeldByAnotherPod, holder)
	}

	metrics.SetLeader(coordinator.identity.PodName, true)
	coordinator.logger.Info("acquired leadership")
	return nil
}

// ClaimLeadershipLoop retries ClaimLeadership at a constant interval until it
// succeeds or ctx ends, in which case the error wraps ErrCancelled.
func (coordinator *Coordinator) ClaimLeadershipLoop(ctx context.Context) error {
	coordinator.logger.Info("trying to acquire lease")
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, coordinator.ClaimLeadership(ctx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(coordinator.options.RetryInterval)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			coordinator.logger.V(1).Info("lease not acquired", "reason", err.Error(), "retryIn", next)
		}),
	)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", core.ErrCancelled, context.Cause(ctx))
	}
	return err
}

// RefreshLeadershipLoop renews the lease until ctx ends or a renewal fails.
// A failed renewal means leadership is lost and is returned.
func (coordinator *Coordinator) RefreshLeadershipLoop(ctx context.Context) error {
	ticker := coordinator.clock.NewTicker(coordinator.options.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			coordinator.logger.Info("stopping lease refresh")
			return nil
		case <-ticker.C():
			if err := coordinator.renew(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				metrics.SetLeader(coordinator.identity.PodName, false)
				coordinator.logger.Error(err, "lost leadership")
				return err
			}
		}
	}
}

// Release deletes the lease if this pod holds it.
func (coordinator *Coordinator) Release(ctx context.Context) error {
	metrics.SetLeader(coordinator.identity.PodName, false)

	current, err := coordinator.getLease(ctx)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if ptr.Deref(current.Spec.HolderIdentity, "") != coordinator.identity.PodName {
		return nil
	}
	if err := coordinator.client.Delete(ctx, current); err != nil && !apierrors.IsNotFound(err) {
		return core.NewPlatformAPIError("release lease", err)
	}
	coordinator.logger.Info("lease released")
	return nil
}

func (coordinator *Coordinator) renew(ctx context.Context) error {
	current, err := coordinator.getLease(ctx)
	if err != nil {
		return err
	}
	if holder := ptr.Deref(current.Spec.HolderIdentity, ""); holder != coordinator.identity.PodName {
		return fmt.Errorf("%w: %s", core.ErrLeaseHeldByAnotherPod, holder)
	}

	now := metav1.NewMicroTime(coordinator.clock.Now())
	current.Spec.RenewTime = &now
	if err := coordinator.client.Update(ctx, current); err != nil {
		return core.NewPlatformAPIError("renew lease", err)
	}
	coordinator.logger.V(1).Info("renewed lease")
	return nil
}

func (coordinator *Coordinator) getLease(ctx context.Context) (*coordinationv1.Lease, error) {
	var lease coordinationv1.Lease
	err := coordinator.client.Get(ctx, types.NamespacedName{Namespace: coordinator.identity.Namespace, Name: LeaseName}, &lease)
	if err != nil {
		return nil, core.NewPlatformAPIError("get lease", err)
	}
	return &lease, nil
}
