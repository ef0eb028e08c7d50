// internal/effort/effort_test.go
package effort

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestV1_Score(t *testing.T) {
	tests := []struct {
		name      string
		additions int
		deletions int
		want      float64
	}{
		{"zero diff", 0, 0, 0.0},
		{"additions only", 10, 0, 10.0},
		{"deletions only", 0, 4, 2.0},
		{"mixed", 10, 4, 12.0},
		{"odd deletions", 1, 3, 2.5},
		{"large", 100000, 50000, 125000.0},
	}

	s := V1{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(tt.additions, tt.deletions))
		})
	}
}

func TestV1_ScoreMatchesFormula(t *testing.T) {
	s := V1{}
	for a := 0; a < 50; a++ {
		for d := 0; d < 50; d++ {
			assert.Equal(t, float64(a)+0.5*float64(d), s.Score(a, d))
		}
	}
}

func TestDefault_IsV1(t *testing.T) {
	assert.Equal(t, VersionV1, Default().Version())
}
