package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "email", in: "ann@x.com", want: "ann-x-com"},
		{name: "dotted_local_part", in: "first.last@mail.example.org", want: "first-last-mail-example-org"},
		{name: "no_special_characters", in: "bob", want: "bob"},
		{name: "empty", in: "", want: ""},
		{name: "already_normalized", in: "ann-x-com", want: "ann-x-com"},
		{name: "only_separators", in: ".@.", want: "---"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"ann@x.com", "a.b.c@d.e", "plain", "", "@@..", "ünïcode@exämple.de"}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
		assert.NotContains(t, once, ".")
		assert.NotContains(t, once, "@")
	}
}

func TestNew(t *testing.T) {
	t.Run("builds_participant", func(t *testing.T) {
		p, err := New(" ann@x.com ", "Ann Lee")
		require.NoError(t, err)
		assert.Equal(t, "ann-x-com", p.ID)
		assert.Equal(t, "ann@x.com", p.Email)
		assert.Equal(t, "Ann Lee", p.DisplayName)
		assert.False(t, p.IsZero())
	})

	t.Run("missing_email", func(t *testing.T) {
		_, err := New("  ", "Ann")
		assert.ErrorIs(t, err, ErrMissingIdentity)
	})
}
