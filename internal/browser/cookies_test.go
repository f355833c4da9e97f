package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	content := `[
		{"name": "li_at", "value": "secret", "domain": ".linkedin.com", "path": "/", "expires": 1790000000, "httpOnly": true, "secure": true, "sameSite": "None"},
		{"name": "session", "value": "abc", "domain": ".linkedin.com", "path": "/"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cookies, err := LoadCookies(path)
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	first := cookies[0]
	assert.Equal(t, "li_at", first.Name)
	assert.Equal(t, "secret", first.Value)
	assert.Equal(t, ".linkedin.com", *first.Domain)
	require.NotNil(t, first.Expires)
	assert.Equal(t, float64(1790000000), *first.Expires)
	assert.True(t, *first.HttpOnly)
	assert.True(t, *first.Secure)
	assert.Equal(t, playwright.SameSiteAttributeNone, first.SameSite)

	//optional fields stay unset when absent from the export
	second := cookies[1]
	assert.Nil(t, second.Expires)
	assert.Nil(t, second.HttpOnly)
	assert.Nil(t, second.SameSite)
}

func TestLoadCookies_MissingFile(t *testing.T) {
	_, err := LoadCookies(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadCookies_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadCookies(path)
	assert.Error(t, err)
}
