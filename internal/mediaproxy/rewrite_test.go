package mediaproxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriterLeavesRelativePaths(t *testing.T) {
	r := NewRewriter([]string{"ngrok"})

	for _, p := range []string{"", "images/a.jpg", "/static/fire/01.png", "/static/ngrok/01.png", "./ngrok/02.png"} {
		assert.Equal(t, p, r.Rewrite(p))
	}
}

func TestRewriterProxiesExternalPaths(t *testing.T) {
	r := NewRewriter([]string{"ngrok"})

	for _, p := range []string{
		"https://abc.ngrok-free.app/img/1.jpg?x=1&y=2",
		"http://10.0.0.5:8000/capture.jpg",
		"HTTPS://Example.com/A.JPG",
	} {
		rewritten := r.Rewrite(p)
		assert.NotEqual(t, p, rewritten)

		decoded, ok := Decode(rewritten)
		require.True(t, ok, p)
		assert.Equal(t, p, decoded)
	}
}

func TestRewriterAddsSchemeToTunnelHosts(t *testing.T) {
	r := NewRewriter([]string{"ngrok"})

	for p, want := range map[string]string{
		"abc.ngrok-free.app/a.jpg": "https://abc.ngrok-free.app/a.jpg",
		"//abc.ngrok.io/img/2.jpg": "https://abc.ngrok.io/img/2.jpg",
	} {
		decoded, ok := Decode(r.Rewrite(p))
		require.True(t, ok, p)
		assert.Equal(t, want, decoded)

		target, err := validateTarget(decoded)
		require.NoError(t, err, p)
		assert.Equal(t, want, target)
	}
}

func TestRewriterIsIdempotent(t *testing.T) {
	r := NewRewriter([]string{"ngrok"})

	once := r.Rewrite("https://abc.ngrok.io/1.jpg")
	assert.Equal(t, once, r.Rewrite(once))
}

func TestRewriterCustomMarkers(t *testing.T) {
	r := NewRewriter([]string{" TryCloudflare ", ""})

	assert.NotEqual(t, "x.trycloudflare.com/1.jpg", r.Rewrite("x.trycloudflare.com/1.jpg"))
	assert.Equal(t, "x.ngrok.io/1.jpg", r.Rewrite("x.ngrok.io/1.jpg"))
}

func TestDecodeRejectsOtherPaths(t *testing.T) {
	_, ok := Decode("images/a.jpg")
	assert.False(t, ok)

	_, ok = Decode(ImageRoute + "?other=1")
	assert.False(t, ok)
}
