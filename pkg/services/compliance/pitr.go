package compliance

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/de-tools/sec-atlas/pkg/models/domain"
	"github.com/de-tools/sec-atlas/pkg/models/store"
)

// checkPITR enumerates every project visible to the server-side management
// credential and detects the recovery addon. Without that credential it
// reports MANUAL_CHECK_REQUIRED and makes no outbound call.
func (s *service) checkPITR(ctx context.Context) domain.PITRResult {
	logger := zerolog.Ctx(ctx)

	if !s.mgmtConfigured {
		return domain.PITRResult{
			Status:  domain.StatusManualCheck,
			Message: "Management API token is not configured; verify point in time recovery from the project dashboard.",
		}
	}

	projects, err := s.mgmt.ListProjects(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("pitr check: project enumeration failed")
		return domain.PITRResult{
			Status: domain.StatusError,
			Error:  err.Error(),
		}
	}

	result := domain.PITRResult{
		Status:   domain.StatusPassing,
		Projects: make([]domain.ProjectPITR, 0, len(projects)),
	}
	for _, p := range projects {
		addons, err := s.mgmt.ListAddons(ctx, p.Ref)
		if err != nil {
			return domain.PITRResult{
				Status: domain.StatusError,
				Error:  err.Error(),
			}
		}

		status := domain.ProjectPITR{
			Name:        p.Name,
			Ref:         p.Ref,
			AddonStatus: "not enabled",
		}
		if addon, ok := findPITRAddon(addons); ok {
			status.Enabled = true
			status.AddonStatus = addon.Variant
			status.AddonMetadata = addon.Meta
		} else {
			result.Status = domain.StatusFailing
		}
		result.Projects = append(result.Projects, status)
	}

	if len(projects) == 0 {
		result.Message = "No projects are visible to the management credential."
	} else if result.Status == domain.StatusFailing {
		result.Message = "Some projects do not have point in time recovery enabled."
	} else {
		result.Message = "Point in time recovery is enabled on every project."
	}
	return result
}

// findPITRAddon matches the recovery addon by case-insensitive substring on
// the addon type.
func findPITRAddon(addons []store.Addon) (store.Addon, bool) {
	for _, a := range addons {
		if strings.Contains(strings.ToLower(a.Type), "pitr") {
			return a, true
		}
	}
	return store.Addon{}, false
}
