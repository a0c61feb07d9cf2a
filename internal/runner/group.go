package runner

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ScenarioGroups nests steps by scenario id, then platform id.
type ScenarioGroups map[string]map[string][]Step

// ScenarioSteps pairs a scenario id with its ordered steps for one platform.
type ScenarioSteps struct {
	ScenarioID string
	Steps      []Step
}

// GroupScenarios buckets steps by scenario and platform, keeping only
// scenarios inside the inclusive start/end window. Steps within a bucket are
// sorted by numeric step index; parse failures sort as 0 and ties keep their
// input order. Empty bounds leave the window open on that side.
func GroupScenarios(steps []Step, scenarioStart, scenarioEnd string) ScenarioGroups {
	seen := make(map[string]bool)
	var scenarioIDs []string
	for _, step := range steps {
		if !seen[step.ScenarioID] {
			seen[step.ScenarioID] = true
			scenarioIDs = append(scenarioIDs, step.ScenarioID)
		}
	}
	sort.Strings(scenarioIDs)

	included := make(map[string]bool)
	for _, id := range filterScenarioIDs(scenarioIDs, scenarioStart, scenarioEnd) {
		included[id] = true
	}

	groups := make(ScenarioGroups)
	for _, step := range steps {
		if !included[step.ScenarioID] {
			continue
		}
		platforms, ok := groups[step.ScenarioID]
		if !ok {
			platforms = make(map[string][]Step)
			groups[step.ScenarioID] = platforms
		}
		platforms[step.PlatformID] = append(platforms[step.PlatformID], step)
	}

	for _, platforms := range groups {
		for _, bucket := range platforms {
			sort.SliceStable(bucket, func(i, j int) bool {
				return stepIndexValue(bucket[i]) < stepIndexValue(bucket[j])
			})
		}
	}
	return groups
}

// BuildPlatformSequences partitions grouped scenarios into one ordered
// work-stream per platform: each platform gets its scenarios in sorted
// scenario-id order, independent of every other platform.
func BuildPlatformSequences(groups ScenarioGroups) map[string][]ScenarioSteps {
	sequences := make(map[string][]ScenarioSteps)
	for _, scenarioID := range sortedScenarioIDs(groups) {
		platforms := groups[scenarioID]
		platformIDs := make([]string, 0, len(platforms))
		for platformID := range platforms {
			platformIDs = append(platformIDs, platformID)
		}
		sort.Strings(platformIDs)
		for _, platformID := range platformIDs {
			sequences[platformID] = append(sequences[platformID], ScenarioSteps{
				ScenarioID: scenarioID,
				Steps:      platforms[platformID],
			})
		}
	}
	return sequences
}

// FlattenScenarios returns the grouped steps as a flat ordered list,
// visiting scenario ids and platform ids in sorted order. This is the row
// order the report is built from.
func FlattenScenarios(groups ScenarioGroups) []Step {
	var steps []Step
	for _, scenarioID := range sortedScenarioIDs(groups) {
		platforms := groups[scenarioID]
		platformIDs := make([]string, 0, len(platforms))
		for platformID := range platforms {
			platformIDs = append(platformIDs, platformID)
		}
		sort.Strings(platformIDs)
		for _, platformID := range platformIDs {
			steps = append(steps, platforms[platformID]...)
		}
	}
	return steps
}

func sortedScenarioIDs(groups ScenarioGroups) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// filterScenarioIDs windows sorted scenario ids to the inclusive start/end
// bounds. When a bound and the candidate both parse numerically the
// comparison is numeric; otherwise it falls back to lexicographic on the raw
// strings. A missing bound defaults to the first or last sorted id.
func filterScenarioIDs(scenarioIDs []string, scenarioStart, scenarioEnd string) []string {
	if scenarioStart == "" && scenarioEnd == "" {
		return scenarioIDs
	}
	if len(scenarioIDs) == 0 {
		return scenarioIDs
	}

	start := scenarioStart
	if start == "" {
		start = scenarioIDs[0]
	}
	end := scenarioEnd
	if end == "" {
		end = scenarioIDs[len(scenarioIDs)-1]
	}
	startNum, startOK := parseScenarioNumeric(start)
	endNum, endOK := parseScenarioNumeric(end)

	var filtered []string
	for _, scenarioID := range scenarioIDs {
		num, numOK := parseScenarioNumeric(scenarioID)
		if (startOK || endOK) && numOK {
			if startOK && num < startNum {
				continue
			}
			if endOK && num > endNum {
				continue
			}
			filtered = append(filtered, scenarioID)
			continue
		}
		if scenarioID < start || scenarioID > end {
			continue
		}
		filtered = append(filtered, scenarioID)
	}
	return filtered
}

var scenarioNumericPattern = regexp.MustCompile(`^[A-Za-z]+([0-9]+)$`)

// parseScenarioNumeric extracts the numeric value of ids like "7" or "Q001".
func parseScenarioNumeric(value string) (int, bool) {
	text := strings.TrimSpace(value)
	if n, err := strconv.Atoi(text); err == nil {
		return n, true
	}
	match := scenarioNumericPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// stepIndexValue parses a step index for ordering, defaulting to 0.
func stepIndexValue(step Step) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(step.StepIndex), 64)
	if err != nil {
		return 0
	}
	return value
}
