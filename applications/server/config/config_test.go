package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	want := Server{
		API: Api{HTTPAddr: "0.0.0.0:8002"},
		Mongo: Mongo{
			URI:      "mongodb://localhost:27017",
			Database: "venturelink",
			Bucket:   "uploads",
		},
		Upload: Upload{
			MaxFileSize:      100 << 20,
			MaxFilesPerField: 2,
			Dir:              "./uploads",
		},
	}

	got, err := Parse("config.yml")

	assert.NoError(t, got.Validate())
	assert.Equal(t, nil, err)
	assert.Equal(t, want, got)
}

func TestParseConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "api:\n  http_addr: \"127.0.0.1:0\"\n")

	got, err := Parse(path)

	assert.NoError(t, err)
	assert.NoError(t, got.Validate())
	assert.Equal(t, int64(100<<20), got.Upload.MaxFileSize)
	assert.Equal(t, 2, got.Upload.MaxFilesPerField)
	assert.Equal(t, "./uploads", got.Upload.Dir)
	assert.Equal(t, "uploads", got.Mongo.Bucket)
}

func TestValidate_MissingAddr(t *testing.T) {
	path := writeConfig(t, "upload:\n  max_file_size: 1\n")

	got, err := Parse(path)

	assert.NoError(t, err)
	assert.Error(t, got.Validate())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}
