package core

const (
	// TargetSizeLimitBytes approximates the maximum payload of a ConfigMap or Secret.
	TargetSizeLimitBytes = 1048576 // 1MiB
	// TargetSizeWarnThresholdBytes raises a warning when above ~90% of the limit.
	TargetSizeWarnThresholdBytes = TargetSizeLimitBytes * 9 / 10
)

// SizeCheckResult captures the outcome of validating a target payload size.
type SizeCheckResult struct {
	Bytes int
	Warn  bool
	Block bool
}

// CheckTargetSize computes the stored size of rendered files to guard against oversized targets.
func CheckTargetSize(data map[string]string) SizeCheckResult {
	total := 0
	for filename, content := range data {
		total += len(filename) + len(content)
	}
	result := SizeCheckResult{Bytes: total}
	switch {
	case total > TargetSizeLimitBytes:
		result.Block = true
	case total > TargetSizeWarnThresholdBytes:
		result.Warn = true
	}
	return result
}
