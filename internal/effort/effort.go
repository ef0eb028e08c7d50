// internal/effort/effort.go
package effort

// Scorer turns the diff size of a commit into an effort score.
// Scores are stored together with Version so several algorithms can coexist.
type Scorer interface {
	Version() string
	Score(additions, deletions int) float64
}

// VersionV1 tags scores produced by V1.
const VersionV1 = "v1"

// deletionWeight is the weight V1 gives to a deleted line relative to an added one.
const deletionWeight = 0.5

// V1 scores a commit as additions + 0.5 * deletions.
type V1 struct{}

// Version implements Scorer.
func (V1) Version() string { return VersionV1 }

// Score implements Scorer.
func (V1) Score(additions, deletions int) float64 {
	return float64(additions) + deletionWeight*float64(deletions)
}

// Default returns the scorer used for new commits.
func Default() Scorer { return V1{} }
