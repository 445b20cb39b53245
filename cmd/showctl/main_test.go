package main

import (
	"bytes"
	"context"
	"testing"

	"showpro/internal/config"
	"showpro/internal/csvio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableArgs(t *testing.T) {
	a, err := parseTableArgs("import", []string{"-table", "artists", "-file", "a.csv", "-map", "Performer=name, Fee=default_fee"})
	require.NoError(t, err)
	assert.Equal(t, "artists", a.table)
	assert.Equal(t, "a.csv", a.file)
	assert.Equal(t, csvio.Mapping{"Performer": "name", "Fee": "default_fee"}, a.mapping)

	a, err = parseTableArgs("export", []string{"-table", "bookings", "-out", "b.csv"})
	require.NoError(t, err)
	assert.Equal(t, "b.csv", a.out)
	assert.Empty(t, a.mapping)
}

func TestParseTableArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		args []string
	}{
		{"no table", "import", []string{"-file", "a.csv"}},
		{"no file", "import", []string{"-table", "artists"}},
		{"preview needs file", "preview", []string{"-table", "artists"}},
		{"bad mapping", "import", []string{"-table", "artists", "-file", "a.csv", "-map", "Performer"}},
		{"unknown flag", "export", []string{"-table", "artists", "-force"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTableArgs(tt.cmd, tt.args)
			assert.ErrorIs(t, err, errUsage)
		})
	}
}

func TestRunRejectsBadCommandsBeforeConnecting(t *testing.T) {
	cfg := &config.Config{}
	var out bytes.Buffer

	assert.ErrorIs(t, run(context.Background(), cfg, nil, &out), errUsage)
	assert.ErrorIs(t, run(context.Background(), cfg, []string{"drop"}, &out), errUsage)
	assert.ErrorIs(t, run(context.Background(), cfg, []string{"import", "-table", "artists"}, &out), errUsage)
	assert.Empty(t, out.String())
}
