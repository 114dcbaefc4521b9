// internal/platform/di/shared/runtime_settings_validate.go
package shared

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate performs hard validation for RuntimeSettings.
//
// Policy:
//   - Fail fast for values that would cause undefined behavior.
//   - Optional features stay disabled when their settings are empty.
func (s RuntimeSettings) Validate() error {
	if s.ConversionTimeout <= 0 {
		return fmt.Errorf("shared.runtime_settings: ConversionTimeout must be positive (got %s)", s.ConversionTimeout)
	}
	if s.Location == nil {
		return fmt.Errorf("shared.runtime_settings: Location is nil")
	}

	// AppBaseURL is used in mails; it must be an HTTP(S) base URL without a path.
	if u := s.AppBaseURL; u != "" {
		rest, ok := strings.CutPrefix(u, "https://")
		if !ok {
			rest, ok = strings.CutPrefix(u, "http://")
		}
		if !ok {
			return fmt.Errorf("shared.runtime_settings: AppBaseURL must start with http:// or https:// (got %q)", u)
		}
		if strings.Contains(rest, "/") {
			return fmt.Errorf("shared.runtime_settings: AppBaseURL must not include a path (got %q)", u)
		}
	}

	// GCS bucket names cannot contain spaces.
	if strings.ContainsAny(s.ExportBucket, " \t\r\n") {
		return fmt.Errorf("shared.runtime_settings: ExportBucket contains whitespace (got %q)", s.ExportBucket)
	}

	// 空は「スイープ無効」
	if s.AccessSweepSchedule != "" {
		if _, err := cron.ParseStandard(s.AccessSweepSchedule); err != nil {
			return fmt.Errorf("shared.runtime_settings: invalid AccessSweepSchedule %q: %w", s.AccessSweepSchedule, err)
		}
	}
	return nil
}
