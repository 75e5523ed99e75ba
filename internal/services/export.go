package services

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sharanagouda/app-release-tracker/internal/models"
)

// FilterOptions mirror the dashboard's filter bar. Empty or "All*"
// values match everything.
type FilterOptions struct {
	Status      string
	Environment string
	Platform    string
	Concept     string
	Search      string
	From        string // releaseDate lower bound, inclusive
	To          string // releaseDate upper bound, inclusive
	OrderBy     string // "oldest" createdAt asc, "releaseDate" date desc, default createdAt desc
}

// FilterReleases applies the dashboard filters over a normalized
// collection. A release matches a status/platform/concept filter when
// any of its concept-releases does.
func FilterReleases(releases []models.Release, f FilterOptions) []models.Release {
	out := make([]models.Release, 0, len(releases))
	for _, r := range releases {
		if matchesFilters(r, f) {
			out = append(out, r)
		}
	}

	switch f.OrderBy {
	case "oldest":
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case "releaseDate":
		sort.SliceStable(out, func(i, j int) bool { return releaseDateAfter(out[i].ReleaseDate, out[j].ReleaseDate) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

func matchesFilters(r models.Release, f FilterOptions) bool {
	if f.Platform != "" && f.Platform != "All Platforms" {
		found := false
		for _, p := range r.Platforms {
			if string(p.Platform) == f.Platform {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Environment != "" && f.Environment != "All" && r.Environment != f.Environment {
		return false
	}

	if f.Concept != "" && f.Concept != models.AllConcepts {
		if !anyConceptRelease(r, func(cr models.ConceptRelease) bool {
			for _, c := range cr.Concepts {
				if c == f.Concept {
					return true
				}
			}
			return false
		}) {
			return false
		}
	}

	if f.Status != "" && f.Status != "All" {
		if !anyConceptRelease(r, func(cr models.ConceptRelease) bool {
			return string(cr.Status) == f.Status
		}) {
			return false
		}
	}

	if f.From != "" {
		if d, err := time.Parse("2006-01-02", f.From); err == nil {
			if rd, err := time.Parse("2006-01-02", r.ReleaseDate); err == nil && rd.Before(d) {
				return false
			}
		}
	}
	if f.To != "" {
		if d, err := time.Parse("2006-01-02", f.To); err == nil {
			if rd, err := time.Parse("2006-01-02", r.ReleaseDate); err == nil && rd.After(d) {
				return false
			}
		}
	}

	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.ReleaseName), q) &&
			!strings.Contains(r.ReleaseDate, q) &&
			!strings.Contains(strings.ToLower(r.Notes), q) {
			return false
		}
	}

	return true
}

// releaseDateAfter orders release dates newest first. The field is free
// text, so values that do not parse as dates sort after everything that
// does, compared among themselves as plain strings.
func releaseDateAfter(a, b string) bool {
	ta, errA := time.Parse("2006-01-02", a)
	tb, errB := time.Parse("2006-01-02", b)
	switch {
	case errA == nil && errB == nil:
		return ta.After(tb)
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a > b
	}
}

func anyConceptRelease(r models.Release, match func(models.ConceptRelease) bool) bool {
	for _, p := range r.Platforms {
		for _, cr := range ConceptReleasesOf(p) {
			if match(cr) {
				return true
			}
		}
	}
	return false
}

// CSVHeader is the flattened export layout: one row per
// (release, platform, concept-release) tuple.
var CSVHeader = []string{
	"Release ID",
	"Release Date",
	"Release Name",
	"Environment",
	"Platform",
	"Concept Release ID",
	"Concepts",
	"Version",
	"Build ID",
	"Rollout %",
	"Status",
	"Build Link",
	"Platform Notes",
	"Changes",
	"General Notes",
	"Created At",
	"Updated At",
}

// WriteCSV streams the collection as CSV. Releases are normalized
// first, so legacy documents flatten the same as canonical ones.
func WriteCSV(w io.Writer, releases []models.Release) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, r := range releases {
		r = Normalize(r)
		for _, p := range r.Platforms {
			for _, cr := range p.ConceptReleases {
				row := []string{
					r.ID,
					r.ReleaseDate,
					r.ReleaseName,
					r.Environment,
					string(p.Platform),
					cr.ID,
					strings.Join(cr.Concepts, "; "),
					cr.Version,
					cr.BuildID,
					strconv.Itoa(cr.RolloutPercentage),
					string(cr.Status),
					cr.BuildLink,
					cr.Notes,
					strings.Join(r.Changes, "; "),
					r.Notes,
					formatTimestamp(r.CreatedAt),
					formatTimestamp(r.UpdatedAt),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
