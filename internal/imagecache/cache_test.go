package imagecache

import (
	"strings"
	"testing"
)

func TestImageIDStable(t *testing.T) {
	a := imageID("https://cdn.livrex.fr/photos/cmd-001.jpg")
	b := imageID("https://cdn.livrex.fr/photos/cmd-001.jpg")
	if a != b {
		t.Error("same URL must map to the same id")
	}
	if !strings.HasPrefix(a, "img_") {
		t.Errorf("unexpected id format: %s", a)
	}
}

func TestImageIDDistinct(t *testing.T) {
	a := imageID("https://cdn.livrex.fr/photos/cmd-001.jpg")
	b := imageID("https://cdn.livrex.fr/photos/cmd-002.jpg")
	if a == b {
		t.Error("different URLs must map to different ids")
	}
}

func TestCacheURLIgnoresEmpty(t *testing.T) {
	c := New(nil, 30)
	// Must not touch the store at all for an empty URL
	c.CacheURL("")
}
