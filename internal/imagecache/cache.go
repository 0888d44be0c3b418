package imagecache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/livrex-com/livrexgo/internal/models"
	"github.com/livrex-com/livrexgo/internal/store"
)

// maxBlobSize bounds a single cached image blob
const maxBlobSize = 5 << 20 // 5MB

// Cache keeps local copies of remote image references so delivery
// photos and store logos stay viewable offline. Blobs are fetched
// best-effort and purged after the retention window.
type Cache struct {
	store      *store.Store
	httpClient *http.Client
	retention  time.Duration
}

// New creates an image cache over the local store
func New(s *store.Store, retentionDays int) *Cache {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Cache{
		store:      s,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retention:  time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Init reports the cache state at startup. The table itself is
// created by the store migration.
func (c *Cache) Init() {
	count := store.Count(c.store, store.TableCachedImages)
	log.Printf("🖼️ Image cache initialized (%d entries)", count)
}

// Get returns the cached record for a URL, or nil
func (c *Cache) Get(originalURL string) *models.CachedImage {
	return store.QueryByIndex[models.CachedImage](c.store, store.TableCachedImages, "original_url", originalURL)
}

// CacheURL caches an image reference best-effort: a fresh entry is
// left alone, a missing or stale one is (re)fetched. Failures are
// silent; the cache is an optimization, never a dependency.
func (c *Cache) CacheURL(originalURL string) {
	if originalURL == "" {
		return
	}

	existing := c.Get(originalURL)
	if existing != nil && len(existing.Blob) > 0 && time.Since(existing.LastUpdated) < c.retention {
		return
	}

	entry := existing
	if entry == nil {
		entry = &models.CachedImage{
			ID:          imageID(originalURL),
			OriginalURL: originalURL,
		}
	}

	if err := c.fetchBlob(entry); err != nil {
		log.Printf("⚠️ Image cache fetch for %s failed: %v", originalURL, err)
		// Keep the reference row anyway so the UI can fall back to
		// the remote URL.
	}

	entry.LastUpdated = time.Now()
	store.Put(c.store, store.TableCachedImages, entry)
}

func (c *Cache) fetchBlob(entry *models.CachedImage) error {
	resp, err := c.httpClient.Get(entry.OriginalURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return io.EOF
	}

	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxBlobSize))
	if err != nil {
		return err
	}

	entry.Blob = blob
	entry.Size = int64(len(blob))
	entry.ContentType = resp.Header.Get("Content-Type")
	return nil
}

// PurgeExpired removes entries past the retention window and returns
// how many were deleted.
func (c *Cache) PurgeExpired() int {
	cutoff := time.Now().Add(-c.retention)
	purged := 0

	for _, entry := range store.GetAll[models.CachedImage](c.store, store.TableCachedImages) {
		if entry.LastUpdated.Before(cutoff) {
			store.Delete(c.store, store.TableCachedImages, entry.ID)
			purged++
		}
	}

	if purged > 0 {
		log.Printf("🧹 Purged %d expired cached images", purged)
	}
	return purged
}

// imageID derives a stable identifier from the URL
func imageID(originalURL string) string {
	sum := sha256.Sum256([]byte(originalURL))
	return "img_" + hex.EncodeToString(sum[:8])
}
