package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateLockID_Deterministic(t *testing.T) {
	// 同じ入力からは常に同じロックIDが得られる
	id1 := GenerateLockID("document", "report.pdf")
	id2 := GenerateLockID("document", "report.pdf")
	assert.Equal(t, id1, id2)
}

func TestGenerateLockID_DistinctInputs(t *testing.T) {
	// 異なる入力は異なるロックIDになる
	assert.NotEqual(t,
		GenerateLockID("document", "a.txt"),
		GenerateLockID("document", "b.txt"),
	)
}
