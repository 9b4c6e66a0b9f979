package validate

import (
	"strings"
	"testing"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIdentifier(t *testing.T) {
	v := Identifier("meetingId")

	assert.NoError(t, v("meeting-1"))
	assert.NoError(t, v("183f0bf3a0982a127bdb8161e0c44eb696b3e75c-1531240585189"))

	for _, bad := range []string{"", "   ", "a b", "room/1", strings.Repeat("x", 129)} {
		err := v(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidParameter, "value %q", bad)
		assert.Contains(t, err.Error(), "meetingId")
	}
}

func TestOneOf(t *testing.T) {
	v := Field("mode", OneOf("microphone", "listen_only"))

	assert.NoError(t, v("listen_only"))
	assert.ErrorIs(t, v("speaker"), domain.ErrInvalidParameter)
}

func TestAll(t *testing.T) {
	err := All(
		Check(Identifier("meetingId"), "m1"),
		Check(Identifier("userId"), ""),
		Check(Identifier("roomId"), "bad id"),
	)
	assert.ErrorContains(t, err, "userId")
}
