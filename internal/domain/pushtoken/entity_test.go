package pushtoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExpoToken(t *testing.T) {
	assert.True(t, IsExpoToken("ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"))
	assert.True(t, IsExpoToken("ExpoPushToken[abc]"))
	assert.False(t, IsExpoToken("ExponentPushToken[]"))
	assert.False(t, IsExpoToken("fcm:abcdef"))
	assert.False(t, IsExpoToken(""))
}
