package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/market_brief/app/display/internal/conf"
)

func TestPublishConfig(t *testing.T) {
	pc := publishConfig(&conf.Data{
		Target: "gist",
		Gist:   &conf.Gist{Id: "abc", Filename: "crypto_data.json"},
		Redis:  &conf.Redis{Url: "redis://localhost:6379/0"},
	})
	assert.Equal(t, "gist", pc.Target)
	assert.Equal(t, "abc", pc.Gist.ID)
	assert.Equal(t, "redis://localhost:6379/0", pc.Redis.URL)
	assert.Empty(t, pc.File.Path)
}

func TestReportRepo_Latest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crypto_data.json")
	d, cleanup, err := NewData(&conf.Data{Target: "file", File: &conf.File{Path: path}}, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()

	r := NewReportRepo(d, log.DefaultLogger)

	_, err = r.Latest(context.Background())
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, os.WriteFile(path, []byte(`{"bias":"WAIT"}`), 0o644))
	doc, err := r.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"bias":"WAIT"}`, string(doc))
}
