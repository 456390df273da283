package utilx_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/marcodd23/go-todo-service/pkg/utilx"
	"github.com/stretchr/testify/assert"
)

func TestGenerateUUID(t *testing.T) {
	a := utilx.GenerateUUID()
	b := utilx.GenerateUUID()

	assert.NotEqual(t, uuid.Nil, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, uuid.Version(4), a.Version())
}

func TestParseInt32ID(t *testing.T) {
	cases := []struct {
		raw  string
		want int32
		ok   bool
	}{
		{"1", 1, true},
		{"2147483647", 2147483647, true},
		{"2147483648", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"12a", 0, false},
		{"", 0, false},
		{"99999999999", 0, false},
	}

	for _, tc := range cases {
		got, ok := utilx.ParseInt32ID(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}
