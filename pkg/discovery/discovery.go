// Package discovery resolves the files a claim declares into rendered
// configuration text by consulting the referenced configuration stores.
package discovery

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"externalconfig/pkg/core"
	"externalconfig/pkg/formats"
	"externalconfig/pkg/merge"
	"externalconfig/pkg/stores"
	"externalconfig/pkg/tree"
)

const tracerName = "externalconfig/discovery"

// StoreLookup finds the provider declared by a store reference. Namespaced
// stores are looked up in namespace; cluster stores ignore it.
type StoreLookup interface {
	GetProvider(ctx context.Context, namespace string, ref core.ConfigurationStoreRef) (core.Provider, error)
}

// FileResult describes how one file was produced.
type FileResult struct {
	Filename string
	Strategy string
	Format   formats.FileType
	// Sources lists the stores whose content ended up in the file.
	Sources []string
}

// Discoverer resolves claim data against configuration stores.
type Discoverer struct {
	lookup  StoreLookup
	factory stores.Factory
	tracer  trace.Tracer
}

// New returns a Discoverer. A nil factory selects stores.NewFromProvider.
func New(lookup StoreLookup, factory stores.Factory) *Discoverer {
	if factory == nil {
		factory = stores.NewFromProvider
	}
	return &Discoverer{
		lookup:  lookup,
		factory: factory,
		tracer:  otel.Tracer(tracerName),
	}
}

// Resolve produces every file of data in sorted filename order. The first
// failing file aborts the whole claim and no partial data is returned.
func (discoverer *Discoverer) Resolve(ctx context.Context, namespace string, data map[string]core.ClaimRef) (map[string]string, []FileResult, error) {
	rendered := make(map[string]string, len(data))
	results := make([]FileResult, 0, len(data))

	for _, filename := range core.SortedFilenames(data) {
		content, result, err := discoverer.ResolveFile(ctx, namespace, filename, data[filename])
		if err != nil {
			return nil, nil, err
		}
		rendered[filename] = content
		results = append(results, result)
	}
	return rendered, results, nil
}

// ResolveFile produces a single file according to the reference strategy.
func (discoverer *Discoverer) ResolveFile(ctx context.Context, namespace, filename string, ref core.ClaimRef) (string, FileResult, error) {
	strategy := ref.Strategy
	if strategy == "" {
		strategy = core.StrategyFallback
	}

	ctx, span := discoverer.tracer.Start(ctx, "discovery.ResolveFile", trace.WithAttributes(
		attribute.String("file", filename),
		attribute.String("strategy", strategy),
		attribute.String("namespace", namespace),
		attribute.Int("stores", len(ref.From)),
	))
	defer span.End()

	var (
		content string
		result  FileResult
		err     error
	)
	switch strategy {
	case core.StrategyMerge:
		content, result, err = discoverer.resolveMerge(ctx, namespace, filename, ref)
	case core.StrategyFallback:
		content, result, err = discoverer.resolveFallback(ctx, namespace, filename, ref)
	default:
		err = fmt.Errorf("unknown strategy %q for %q", strategy, filename)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", FileResult{}, err
	}
	span.SetAttributes(attribute.String("format", string(result.Format)))
	return content, result, nil
}

func (discoverer *Discoverer) resolveFallback(ctx context.Context, namespace, filename string, ref core.ClaimRef) (string, FileResult, error) {
	logger := log.FromContext(ctx).WithValues("file", filename)

	if len(ref.From) == 0 {
		return "", FileResult{}, &core.ConfigStoreError{Filename: filename, Err: errors.New("no configuration stores referenced")}
	}

	var attempts []error
	for _, param := range ref.From {
		document, detected, err := discoverer.fetch(ctx, namespace, param)
		if err != nil {
			logger.V(1).Info("store could not provide file, trying next", "store", param.ConfigurationStoreRef.Name, "error", err.Error())
			attempts = append(attempts, fmt.Errorf("%s/%s: %w", param.ConfigurationStoreRef.Kind, param.ConfigurationStoreRef.Name, err))
			continue
		}

		format := outputFormat(filename, detected)
		content, err := formats.Format(document, format)
		if err != nil {
			return "", FileResult{}, err
		}
		return content, FileResult{
			Filename: filename,
			Strategy: core.StrategyFallback,
			Format:   format,
			Sources:  []string{param.ConfigurationStoreRef.Name},
		}, nil
	}

	return "", FileResult{}, &core.ConfigStoreError{Filename: filename, Err: errors.Join(attempts...)}
}

func (discoverer *Discoverer) resolveMerge(ctx context.Context, namespace, filename string, ref core.ClaimRef) (string, FileResult, error) {
	if len(ref.From) == 0 {
		return "", FileResult{}, &core.ConfigStoreError{Filename: filename, Err: errors.New("no configuration stores referenced")}
	}

	documents := make([]tree.Value, 0, len(ref.From))
	sources := make([]string, 0, len(ref.From))
	var firstDetected formats.FileType

	for _, param := range ref.From {
		document, detected, err := discoverer.fetch(ctx, namespace, param)
		if err != nil {
			return "", FileResult{}, fmt.Errorf("resolve %q from %s/%s: %w", filename, param.ConfigurationStoreRef.Kind, param.ConfigurationStoreRef.Name, err)
		}
		if firstDetected == "" {
			firstDetected = detected
		}
		documents = append(documents, document)
		sources = append(sources, param.ConfigurationStoreRef.Name)
	}

	merged, err := merge.MergeAll(documents...)
	if err != nil {
		return "", FileResult{}, fmt.Errorf("merge %q: %w", filename, err)
	}

	format := outputFormat(filename, firstDetected)
	content, err := formats.Format(merged, format)
	if err != nil {
		return "", FileResult{}, err
	}
	return content, FileResult{
		Filename: filename,
		Strategy: core.StrategyMerge,
		Format:   format,
		Sources:  sources,
	}, nil
}

// fetch loads one store's content and parses it into a tree.
func (discoverer *Discoverer) fetch(ctx context.Context, namespace string, param core.StoreParametrization) (tree.Value, formats.FileType, error) {
	provider, err := discoverer.lookup.GetProvider(ctx, namespace, param.ConfigurationStoreRef)
	if err != nil {
		return nil, "", err
	}

	store, err := discoverer.factory(provider)
	if err != nil {
		return nil, "", err
	}

	text, err := store.GetConfig(ctx, param.ConfigurationStoreParams, nil)
	if err != nil {
		return nil, "", err
	}

	return formats.Parse(text)
}

// outputFormat prefers the filename extension and falls back to the format
// the content was detected as.
func outputFormat(filename string, detected formats.FileType) formats.FileType {
	if fileType, ok := formats.FromFilename(filename); ok {
		return fileType
	}
	return detected
}
