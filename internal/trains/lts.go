package trains

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/traincut/traincut/internal/semver"
)

// LtsBranch is a patch-maintenance branch outside the three active trains.
// LTS branches are not tracked in the Active snapshot; they are discovered
// from registry dist-tag metadata.
type LtsBranch struct {
	// Name is the version branch name, e.g. "9.2.x".
	Name string
	// Version is the most recent version published under the LTS dist-tag.
	Version semver.Version
	// NpmDistTag is the LTS dist-tag, e.g. "v9-lts".
	NpmDistTag string
}

// LtsBranches partitions discovered LTS branches by support state.
type LtsBranches struct {
	// Active branches are still inside the support window, ordered most
	// recent major first.
	Active []LtsBranch
	// Inactive branches have exited the support window, same ordering.
	Inactive []LtsBranch
}

// ltsTagRegex matches LTS dist-tags of the form "v10-lts".
var ltsTagRegex = regexp.MustCompile(`^v(\d+)-lts$`)

// LtsDistTag derives the LTS dist-tag name for a major version.
func LtsDistTag(major uint64) string {
	return fmt.Sprintf("v%d-lts", major)
}

// PartitionLts classifies LTS dist-tags into active and inactive branches.
//
// distTags maps dist-tag name to the version it points at; publishTimes maps
// version to publish time. A major line is active while now is within window
// of its first stable release ("<major>.0.0"); when that release has no
// recorded time, the time of the tagged version is used instead.
func PartitionLts(distTags map[string]string, publishTimes map[string]time.Time, now time.Time, window time.Duration) (*LtsBranches, error) {
	var all []struct {
		branch LtsBranch
		major  int
		start  time.Time
	}

	for tag, rawVersion := range distTags {
		m := ltsTagRegex.FindStringSubmatch(tag)
		if m == nil {
			continue
		}
		major, _ := strconv.Atoi(m[1])

		version, err := semver.Parse(rawVersion)
		if err != nil {
			return nil, err
		}

		start, ok := publishTimes[fmt.Sprintf("%d.0.0", major)]
		if !ok {
			start = publishTimes[rawVersion]
		}

		all = append(all, struct {
			branch LtsBranch
			major  int
			start  time.Time
		}{
			branch: LtsBranch{
				Name:       VersionBranchName(version),
				Version:    version,
				NpmDistTag: tag,
			},
			major: major,
			start: start,
		})
	}

	sort.Slice(all, func(i, j int) bool { return all[i].major > all[j].major })

	result := &LtsBranches{}
	for _, entry := range all {
		if !entry.start.IsZero() && now.Before(entry.start.Add(window)) {
			result.Active = append(result.Active, entry.branch)
		} else {
			result.Inactive = append(result.Inactive, entry.branch)
		}
	}
	return result, nil
}
