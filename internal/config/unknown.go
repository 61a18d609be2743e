package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownSectionKeys lists the valid keys of every config section.
var knownSectionKeys = map[string][]string{
	"oauth":       {"auth_url", "client_id", "redirect_uri", "token_url"},
	"drive":       {"api_base_url", "upload_url"},
	"credentials": {"backend", "file_path", "service"},
	"upload":      {"default_folder_id", "max_file_size"},
	"logging":     {"log_level"},
	"network":     {"connect_timeout", "data_timeout", "user_agent"},
}

// knownSections is the sorted list of section names for Levenshtein
// matching. Sorted for deterministic suggestions on ties.
var knownSections = func() []string {
	names := make([]string, 0, len(knownSectionKeys))
	for name := range knownSectionKeys {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}()

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns
// an error with "did you mean?" suggestions for each unknown key.
func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error

	for _, key := range md.Undecoded() {
		errs = append(errs, unknownKeyError(key))
	}

	return errors.Join(errs...)
}

// unknownKeyError describes one undecoded key. A key inside a known section
// is matched against that section's keys; anything else is matched against
// the section names.
func unknownKeyError(key toml.Key) error {
	if len(key) >= 2 {
		if known, ok := knownSectionKeys[key[0]]; ok {
			field := key[1]
			if suggestion := closestMatch(field, known); suggestion != "" {
				return fmt.Errorf("unknown config key %q in [%s]; did you mean %q?", field, key[0], suggestion)
			}

			return fmt.Errorf("unknown config key %q in [%s]", field, key[0])
		}
	}

	name := key[0]
	if suggestion := closestMatch(name, knownSections); suggestion != "" {
		return fmt.Errorf("unknown config key %q; did you mean [%s]?", name, suggestion)
	}

	if section := sectionOf(name); section != "" {
		return fmt.Errorf("unknown config key %q; it belongs in [%s]", name, section)
	}

	return fmt.Errorf("unknown config key %q", strings.Join(key, "."))
}

// sectionOf returns the section that owns a key written at the top level.
func sectionOf(field string) string {
	for _, section := range knownSections {
		for _, k := range knownSectionKeys[section] {
			if k == field {
				return section
			}
		}
	}

	return ""
}

// closestMatch finds the closest known key by Levenshtein distance.
// Returns empty string if no match is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		d := levenshtein(unknown, k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}

	if bestDist <= maxLevenshteinDistance {
		return best
	}

	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	// Single-row optimization avoids allocating a full matrix.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
