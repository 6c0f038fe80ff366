// Package evaluation scores a clustering result against hand labels.
//
// Accuracy is measured over asset pairs: a pair is positive when both assets
// share a group. Precision is the share of predicted pairs that are labelled
// together, recall the share of labelled pairs that were predicted. Assets
// missing from either side are ignored and reported.
package evaluation

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/vanha-creative/autonamer/internal/models"
)

// Metrics summarises one comparison.
type Metrics struct {
	Precision float64 `yaml:"precision"`
	Recall    float64 `yaml:"recall"`
	F1        float64 `yaml:"f1"`

	TruePairs      int `yaml:"truepairs"`
	PredictedPairs int `yaml:"predictedpairs"`
	ExpectedPairs  int `yaml:"expectedpairs"`

	ExpectedGroups  int `yaml:"expectedgroups"`
	PredictedGroups int `yaml:"predictedgroups"`
	ExactGroups     int `yaml:"exactgroups"`

	ExpectedUngrouped  int `yaml:"expectedungrouped"`
	PredictedUngrouped int `yaml:"predictedungrouped"`

	Unlabelled []string `yaml:"unlabelled,omitempty"`
	Unseen     []string `yaml:"unseen,omitempty"`
}

type pair struct{ a, b string }

func pairsOf(groups [][]string, keep func(string) bool) map[pair]bool {
	out := make(map[pair]bool)
	for _, g := range groups {
		var members []string
		for _, name := range g {
			if keep(name) {
				members = append(members, name)
			}
		}
		sort.Strings(members)
		for i := range members {
			for j := i + 1; j < len(members); j++ {
				out[pair{members[i], members[j]}] = true
			}
		}
	}
	return out
}

// Predicted converts a clustering result to file-name groups.
func Predicted(grouped *models.GroupedAssets) (groups [][]string, ungrouped []string) {
	for _, g := range grouped.Groups {
		names := make([]string, 0, len(g.Assets))
		for _, a := range g.Assets {
			names = append(names, a.Asset.Name)
		}
		groups = append(groups, names)
	}
	for _, a := range grouped.Ungrouped {
		ungrouped = append(ungrouped, a.Asset.Name)
	}
	return groups, ungrouped
}

// Compare scores grouped against labels.
func Compare(labels *Labels, grouped *models.GroupedAssets) Metrics {
	groups, ungrouped := Predicted(grouped)
	expected := labels.assignment()

	predicted := make(map[string]bool)
	for _, g := range groups {
		for _, name := range g {
			predicted[name] = true
		}
	}
	for _, name := range ungrouped {
		predicted[name] = true
	}

	m := Metrics{
		ExpectedGroups:     len(labels.Groups),
		PredictedGroups:    len(groups),
		ExpectedUngrouped:  len(labels.Ungrouped),
		PredictedUngrouped: len(ungrouped),
	}
	for name := range predicted {
		if _, ok := expected[name]; !ok {
			m.Unlabelled = append(m.Unlabelled, name)
		}
	}
	for name := range expected {
		if !predicted[name] {
			m.Unseen = append(m.Unseen, name)
		}
	}
	sort.Strings(m.Unlabelled)
	sort.Strings(m.Unseen)

	both := func(name string) bool {
		_, ok := expected[name]
		return ok && predicted[name]
	}
	want := pairsOf(labels.Groups, both)
	got := pairsOf(groups, both)
	for p := range got {
		if want[p] {
			m.TruePairs++
		}
	}
	m.PredictedPairs = len(got)
	m.ExpectedPairs = len(want)

	m.Precision = ratio(m.TruePairs, m.PredictedPairs)
	m.Recall = ratio(m.TruePairs, m.ExpectedPairs)
	if m.Precision+m.Recall > 0 {
		m.F1 = round(2 * m.Precision * m.Recall / (m.Precision + m.Recall))
	}

	labelled := make(map[string]bool)
	for _, g := range labels.Groups {
		labelled[key(g)] = true
	}
	for _, g := range groups {
		if labelled[key(g)] {
			m.ExactGroups++
		}
	}
	return m
}

// ratio returns n/d, or 1 when there is nothing to get wrong.
func ratio(n, d int) float64 {
	if d == 0 {
		return 1
	}
	return round(float64(n) / float64(d))
}

func key(names []string) string {
	sorted := slices.Clone(names)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
