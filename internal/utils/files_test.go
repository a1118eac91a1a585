package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/attrition-cli/internal/utils"
)

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	require.NoError(t, utils.SafeWriteFile(path, []byte("a: 1\n")))
	require.NoError(t, utils.SafeWriteFile(path, []byte("a: 2\n")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a: 2\n", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	err := utils.SafeWriteFile(filepath.Join(t.TempDir(), "nope", "x"), []byte("x"))
	assert.Error(t, err)
}

func TestSafeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Jane Doe", "Jane_Doe"},
		{"  ../../etc/passwd", "etc_passwd"},
		{"hr data (2024).xlsx", "hr_data_2024_.xlsx"},
		{"Zoë", "Zoë"},
		{"///", "fallback"},
		{"", "fallback"},
		{".env", "env"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, utils.SafeName(tc.in, "fallback"), tc.in)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"rows": 3})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"rows\": 3\n}", string(b))

	_, err = utils.PrettyJSON(make(chan int))
	assert.Error(t, err)
}
