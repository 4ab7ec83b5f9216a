// Package model implements the crop classifier: a shallow CART decision tree
// (Gini impurity, max depth 3) over the four numeric features
// [month, temp, rain, ph], plus a JSON artifact store so training happens at
// most once per dataset.
package model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/couchcryptid/crop-advisor-service/internal/domain"
)

// MaxDepth is fixed: the reference tool trains DecisionTreeClassifier(max_depth=3).
const MaxDepth = 3

// Node is one decision-tree node. Leaf nodes carry a label; internal nodes
// route samples with value < Threshold to Left, the rest to Right.
type Node struct {
	Leaf      bool    `json:"leaf"`
	Label     string  `json:"label,omitempty"`
	Feature   int     `json:"feature,omitempty"` // index into FeatureNames
	Threshold float64 `json:"threshold,omitempty"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

// Model is a fitted classifier. Fields records the canonical feature order
// used at training time and FeatureNames the resolved dataset headers in the
// same positions; prediction rows are always assembled in exactly this order.
type Model struct {
	Fields       []string  `json:"fields"`
	FeatureNames []string  `json:"feature_names"`
	Seed         int64     `json:"seed"`
	DatasetHash  string    `json:"dataset_hash"`
	TrainedAt    time.Time `json:"trained_at"`
	Root         *Node     `json:"root"`
}

// Train fits a decision tree on the table using the resolved columns. The
// feature matrix is built from domain.TrainingFields in order and the label
// vector from the crop column. Identical data and seed produce an identical
// tree. Cell-parse failures abort training with a descriptive error; the
// caller treats that as non-fatal to the session.
func Train(tbl *domain.Table, cols domain.Columns, seed int64, datasetHash string) (*Model, error) {
	fields := make([]string, len(domain.TrainingFields))
	featureNames := make([]string, len(domain.TrainingFields))
	for i, f := range domain.TrainingFields {
		header, ok := cols[f]
		if !ok {
			return nil, fmt.Errorf("field %q has no resolved column", f)
		}
		fields[i] = string(f)
		featureNames[i] = header
	}
	cropCol, ok := cols[domain.FieldCrop]
	if !ok {
		return nil, fmt.Errorf("field %q has no resolved column", domain.FieldCrop)
	}

	features := make([][]float64, 0, len(tbl.Rows))
	labels := make([]string, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		vec := make([]float64, len(featureNames))
		for j, header := range featureNames {
			v, err := strconv.ParseFloat(row.Get(header), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i+1, header, err)
			}
			vec[j] = v
		}
		label := row.Get(cropCol)
		if label == "" {
			return nil, fmt.Errorf("row %d: empty crop label", i+1)
		}
		features = append(features, vec)
		labels = append(labels, label)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("no training rows")
	}

	rng := rand.New(rand.NewSource(seed))
	root := grow(features, labels, 0, rng)

	return &Model{
		Fields:       fields,
		FeatureNames: featureNames,
		Seed:         seed,
		DatasetHash:  datasetHash,
		TrainedAt:    domain.Clock().Now().UTC(),
		Root:         root,
	}, nil
}

// FeatureVector assembles the single inference row for the given conditions
// in the exact training column order. Feature order mismatches between
// training and prediction are a latent defect class, so the pairing lives in
// one place and is tested explicitly.
func (m *Model) FeatureVector(c domain.Conditions) ([]float64, error) {
	vec := make([]float64, len(m.Fields))
	for i, f := range m.Fields {
		switch domain.Field(f) {
		case domain.FieldMonth:
			vec[i] = float64(c.Month)
		case domain.FieldTemp:
			vec[i] = c.Temperature
		case domain.FieldRain:
			vec[i] = c.Rainfall
		case domain.FieldPH:
			vec[i] = c.SoilPH
		default:
			return nil, fmt.Errorf("unknown training field %q", f)
		}
	}
	return vec, nil
}

// Predict runs single-row inference and returns the crop label.
func (m *Model) Predict(c domain.Conditions) (string, error) {
	if m == nil || m.Root == nil {
		return "", fmt.Errorf("model is not fitted")
	}
	vec, err := m.FeatureVector(c)
	if err != nil {
		return "", err
	}

	node := m.Root
	for !node.Leaf {
		if node.Feature < 0 || node.Feature >= len(vec) {
			return "", fmt.Errorf("corrupt model: feature index %d out of range", node.Feature)
		}
		if vec[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
		if node == nil {
			return "", fmt.Errorf("corrupt model: missing child node")
		}
	}
	return node.Label, nil
}

// split is a candidate partition of the samples at a node.
type split struct {
	feature   int
	threshold float64
	impurity  float64
}

func grow(features [][]float64, labels []string, depth int, rng *rand.Rand) *Node {
	if depth >= MaxDepth || len(labels) < 2 || isPure(labels) {
		return &Node{Leaf: true, Label: majorityLabel(labels)}
	}

	best, ok := bestSplit(features, labels, rng)
	if !ok {
		return &Node{Leaf: true, Label: majorityLabel(labels)}
	}

	var lf, rf [][]float64
	var ll, rl []string
	for i, vec := range features {
		if vec[best.feature] < best.threshold {
			lf = append(lf, vec)
			ll = append(ll, labels[i])
		} else {
			rf = append(rf, vec)
			rl = append(rl, labels[i])
		}
	}

	return &Node{
		Feature:   best.feature,
		Threshold: best.threshold,
		Left:      grow(lf, ll, depth+1, rng),
		Right:     grow(rf, rl, depth+1, rng),
	}
}

// bestSplit scans every feature in order and every midpoint between adjacent
// distinct values. Candidates tied on weighted impurity are collected and one
// is chosen with the seeded RNG, so runs with the same data and seed always
// build the same tree.
func bestSplit(features [][]float64, labels []string, rng *rand.Rand) (split, bool) {
	const eps = 1e-12
	bestImpurity := math.Inf(1)
	var candidates []split

	for f := range features[0] {
		values := make([]float64, len(features))
		for i, vec := range features {
			values[i] = vec[f]
		}
		sort.Float64s(values)

		for i := 1; i < len(values); i++ {
			if values[i] == values[i-1] {
				continue
			}
			threshold := (values[i] + values[i-1]) / 2

			var left, right []string
			for j, vec := range features {
				if vec[f] < threshold {
					left = append(left, labels[j])
				} else {
					right = append(right, labels[j])
				}
			}
			if len(left) == 0 || len(right) == 0 {
				continue
			}

			n := float64(len(labels))
			impurity := float64(len(left))/n*gini(left) + float64(len(right))/n*gini(right)

			switch {
			case impurity < bestImpurity-eps:
				bestImpurity = impurity
				candidates = candidates[:0]
				candidates = append(candidates, split{feature: f, threshold: threshold, impurity: impurity})
			case math.Abs(impurity-bestImpurity) <= eps:
				candidates = append(candidates, split{feature: f, threshold: threshold, impurity: impurity})
			}
		}
	}

	if len(candidates) == 0 || bestImpurity >= gini(labels)-eps {
		return split{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

func gini(labels []string) float64 {
	counts := make(map[string]int, 4)
	for _, l := range labels {
		counts[l]++
	}
	n := float64(len(labels))
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / n
		sum += p * p
	}
	return 1 - sum
}

func isPure(labels []string) bool {
	for _, l := range labels[1:] {
		if l != labels[0] {
			return false
		}
	}
	return true
}

// majorityLabel returns the most frequent label, breaking count ties by
// lexical order so leaves are deterministic.
func majorityLabel(labels []string) string {
	counts := make(map[string]int, 4)
	for _, l := range labels {
		counts[l]++
	}
	best, bestCount := "", -1
	for l, c := range counts {
		if c > bestCount || (c == bestCount && l < best) {
			best, bestCount = l, c
		}
	}
	return best
}
