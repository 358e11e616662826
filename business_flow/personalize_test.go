package businessflow

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTemplateBody(t *testing.T) {
	t.Run("DecodesBase64AndEntities", func(t *testing.T) {
		raw := "&lt;html&gt;Hello &amp; welcome, &quot;{{.FirstName}}&quot;&nbsp;&lt;/html&gt;"
		encoded := base64.StdEncoding.EncodeToString([]byte(raw))

		body, err := DecodeTemplateBody(encoded)
		require.NoError(t, err)
		assert.Equal(t, `<html>Hello & welcome, "{{.FirstName}}" </html>`, body)
	})

	t.Run("PlaceholdersSurviveDecoding", func(t *testing.T) {
		raw := "<p>{{.URL}}</p>{{.TrackerURL}}"
		encoded := base64.StdEncoding.EncodeToString([]byte(raw))

		body, err := DecodeTemplateBody(encoded)
		require.NoError(t, err)
		assert.Contains(t, body, "{{.URL}}")
		assert.Contains(t, body, "{{.TrackerURL}}")
	})

	t.Run("InvalidBase64", func(t *testing.T) {
		_, err := DecodeTemplateBody("not-base64!!!")
		assert.Error(t, err)
	})
}

func TestBuildUniqueLink(t *testing.T) {
	link := BuildUniqueLink("https://landing.example.com", 7, 42, 3)
	assert.Equal(t, "https://landing.example.com/7/42/3", link)
}

func TestBuildTrackerBase(t *testing.T) {
	t.Run("ReplacesExistingPort", func(t *testing.T) {
		base := BuildTrackerBase("http://phish.example.com:3000", "", 8000)
		assert.Equal(t, "http://phish.example.com:8000", base)
	})

	t.Run("AppendsPortWhenMissing", func(t *testing.T) {
		base := BuildTrackerBase("http://phish.example.com", "", 8000)
		assert.Equal(t, "http://phish.example.com:8000", base)
	})

	t.Run("HostOverrideWins", func(t *testing.T) {
		base := BuildTrackerBase("http://phish.example.com:3000", "https://tracker.example.com", 8000)
		assert.Equal(t, "https://tracker.example.com", base)
	})
}

func TestBuildTrackerPixel(t *testing.T) {
	pixel := BuildTrackerPixel("http://phish.example.com:8000", 15)
	assert.Equal(t, `<img src="http://phish.example.com:8000/api/campaigns/tracker/15" alt="" width="1" height="1" />`, pixel)
}

func TestPersonalize(t *testing.T) {
	body := "<p>Hi {{.FirstName}}, visit {{.URL}}</p>{{.TrackerURL}}"
	out := Personalize(body, "https://landing.example.com/1/2/3", `<img src="t" alt="" width="1" height="1" />`)

	assert.Equal(t, `<p>Hi User, visit https://landing.example.com/1/2/3</p><img src="t" alt="" width="1" height="1" />`, out)
	assert.NotContains(t, out, "{{.")
}
