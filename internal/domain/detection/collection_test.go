package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "drone_01", CollectionName("drone_01"))
	assert.Equal(t, "drone_01", CollectionName(" drone-01 "))
	assert.Equal(t, CollectionName("drone-1"), CollectionName("drone_1"))
	assert.Equal(t, "x__y", CollectionName("x; y"))
}

func TestValidConfidence(t *testing.T) {
	assert.True(t, ValidConfidence(0))
	assert.True(t, ValidConfidence(1))
	assert.True(t, ValidConfidence(0.75))
	assert.False(t, ValidConfidence(-0.01))
	assert.False(t, ValidConfidence(1.2))
}
