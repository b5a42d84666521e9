package core

import "time"

// Managed metadata keys and finalizer
const (
	ManagedLabel          = "external-config.com/managed"
	ClaimAnnotation       = "external-config.com/claim"
	ContentHashAnnotation = "external-config.com/content-hash"

	Finalizer = "external-config.com/finalizer"

	// FieldManager owns the fields written through server-side apply.
	FieldManager = "configmap-claim-controller"
)

// Condition types
const (
	CondReady    = "Ready"
	CondDegraded = "Degraded"
)

// Claim strategies
const (
	StrategyMerge    = "Merge"
	StrategyFallback = "Fallback"
)

// Creation policies
const (
	CreationPolicyOwned  = "Owned"
	CreationPolicyOrphan = "Orphan"
	CreationPolicyMerge  = "Merge"
	CreationPolicyNone   = "None"
)

// Store kinds a claim can reference.
const (
	StoreKindNamespaced = "ConfigurationStore"
	StoreKindCluster    = "ClusterConfigurationStore"
)

// Reconcile timing
const (
	DefaultRefreshInterval  = 5 * time.Minute
	ErrorRequeueInterval    = 60 * time.Second
	ConflictRequeueInterval = time.Second
)
