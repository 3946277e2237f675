package api

import (
	"fmt"
	"strings"

	"github.com/lei/plr-summary/internal/models"
)

// SummaryFilter narrows a list of summaries
type SummaryFilter struct {
	Search   string
	Statuses []models.Status
	Finished *bool
}

// FilterSummaries filters summaries based on query parameters. Search matches
// the run name, application, component or pipeline case-insensitively.
func FilterSummaries(summaries []models.Summary, f SummaryFilter) []models.Summary {
	if f.Search == "" && len(f.Statuses) == 0 && f.Finished == nil {
		return summaries
	}

	filtered := make([]models.Summary, 0, len(summaries))
	searchLower := strings.ToLower(f.Search)

	for _, s := range summaries {
		// Search filter
		if f.Search != "" && !matchesSearch(s, searchLower) {
			continue
		}

		// Status filter
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, s.Status) {
			continue
		}

		// Finished filter
		if f.Finished != nil && s.Status.IsTerminal() != *f.Finished {
			continue
		}

		filtered = append(filtered, s)
	}

	return filtered
}

func matchesSearch(s models.Summary, searchLower string) bool {
	for _, field := range []string{s.Name, s.Application, s.Component, s.Pipeline} {
		if strings.Contains(strings.ToLower(field), searchLower) {
			return true
		}
	}
	return false
}

func containsStatus(statuses []models.Status, status models.Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

var knownStatuses = []models.Status{
	models.StatusSucceeded,
	models.StatusFailed,
	models.StatusRunning,
	models.StatusPending,
	models.StatusUnknown,
}

// parseStatusParam parses a comma-separated, case-insensitive status list
func parseStatusParam(value string) ([]models.Status, error) {
	if value == "" {
		return nil, nil
	}

	var statuses []models.Status
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		matched := false
		for _, known := range knownStatuses {
			if strings.EqualFold(part, string(known)) {
				statuses = append(statuses, known)
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("unknown status %q", part)
		}
	}
	return statuses, nil
}

// parseBoolParam parses boolean query parameters
func parseBoolParam(value string) *bool {
	if value == "" {
		return nil
	}

	if value == "true" || value == "1" {
		result := true
		return &result
	}

	if value == "false" || value == "0" {
		result := false
		return &result
	}

	return nil
}
