package environment

import (
	"testing"

	"github.com/hairizuanbinnoorazman/uiscript/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironment_SetGet(t *testing.T) {
	env := New()

	_, ok := env.Get("user")
	assert.False(t, ok)

	env.Set("user", "alice")
	env.Set("user", "bob")

	v, ok := env.Get("user")
	require.True(t, ok)
	assert.Equal(t, "bob", v)
	assert.Equal(t, 1, env.Len())
}

func TestEnvironment_Resolve(t *testing.T) {
	env := New()
	env.Set("city", "Lisbon")

	tests := []struct {
		name    string
		param   parser.CmdParam
		want    string
		wantErr error
	}{
		{"literal is returned as is", parser.Literal("city"), "city", nil},
		{"defined variable", parser.Var("city"), "Lisbon", nil},
		{"undefined variable", parser.Var("country"), "", ErrUndefinedVariable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.Resolve(tt.param)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.param.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
