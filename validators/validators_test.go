package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordValidator(t *testing.T) {
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("a", 256)), ErrPasswordTooLong)
	assert.NoError(t, PasswordValidator("long enough"))
}

func TestUsernameValidator(t *testing.T) {
	assert.ErrorIs(t, UsernameValidator(""), ErrUsernameEmpty)
	assert.ErrorIs(t, UsernameValidator(strings.Repeat("a", 65)), ErrUsernameTooLong)
	assert.ErrorIs(t, UsernameValidator("has spaces"), ErrUsernameInvalid)
	assert.ErrorIs(t, UsernameValidator("ünïcode"), ErrUsernameInvalid)
	assert.NoError(t, UsernameValidator("dave.o-connor_2"))
}
