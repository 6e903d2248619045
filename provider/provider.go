// Package provider supplies ready-made download policies: where an image
// comes from, where it lands, and the overwrite and size rules for it.
package provider

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"

	"github.com/adamwoolhether/imagedl/client"
	"github.com/adamwoolhether/imagedl/resolve"
)

// DefaultMaxFileSize bounds provider downloads unless overridden.
const DefaultMaxFileSize int64 = 4 << 20 // 4MB

const (
	defaultWidth  = 640
	defaultHeight = 480
	stemLength    = 6
	stemAlphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// UnsplashIDs are the photo ids Unsplash picks from.
var UnsplashIDs = []string{
	"1506744038136-46273834b3fb",
	"1470071459604-3b5ec3a7fe05",
	"1441974231531-c6227db76b6e",
	"1569596082827-c5e8990496cb",
	"1587932775991-708a20af2cc2",
	"1523712999610-f77fbcfc3843",
	"1623166200209-6bd48520d6cb",
	"1532587459811-f057563d1936",
}

// Provider is an immutable download policy.
type Provider struct {
	url       string
	dest      string
	overwrite bool
	maxSize   int64
}

func (p Provider) URL() string          { return p.url }
func (p Provider) Destination() string  { return p.dest }
func (p Provider) AllowOverwrite() bool { return p.overwrite }
func (p Provider) MaxFileSize() int64   { return p.maxSize }

func (p Provider) String() string {
	return fmt.Sprintf("%s -> %s", p.url, p.dest)
}

// Fixed downloads rawURL. A dest without an extension is treated as a
// directory and the file name is derived from the URL, see [resolve.Transform].
func Fixed(rawURL, dest string, opts ...Option) Provider {
	o := newOptions(opts)
	return o.provider(rawURL, resolve.Transform(rawURL, dest, o.prefix))
}

// Picsum fetches a random photo of the configured size from picsum.photos.
func Picsum(dir string, opts ...Option) Provider {
	o := newOptions(opts)
	u := client.URL("https", "picsum.photos", fmt.Sprintf("/%d/%d", o.width, o.height))
	name := fmt.Sprintf("%spicsum-%s-%dx%d.jpg", o.prefix, randomStem(o.rnd), o.width, o.height)

	return o.provider(u.String(), filepath.Join(dir, name))
}

// LoremFlickr fetches a random photo of the configured size from loremflickr.com.
func LoremFlickr(dir string, opts ...Option) Provider {
	o := newOptions(opts)
	u := client.URL("https", "loremflickr.com", fmt.Sprintf("/%d/%d", o.width, o.height))
	name := fmt.Sprintf("%sloremflickr-%s.jpg", o.prefix, randomStem(o.rnd))

	return o.provider(u.String(), filepath.Join(dir, name))
}

// Unsplash fetches one of [UnsplashIDs], cropped to the configured size.
func Unsplash(dir string, opts ...Option) Provider {
	o := newOptions(opts)
	id := PickOne(o.rnd, UnsplashIDs)
	u := client.URL("https", "images.unsplash.com", "/photo-"+id, client.WithQueryStrings(map[string]string{
		"w":   fmt.Sprint(o.width),
		"h":   fmt.Sprint(o.height),
		"fit": "crop",
	}))
	name := fmt.Sprintf("%sunsplash-%s-%dx%d.jpg", o.prefix, randomStem(o.rnd), o.width, o.height)

	return o.provider(u.String(), filepath.Join(dir, name))
}

// PickOne returns a random element of list, or the zero value for an empty
// list. A nil r uses the global source.
func PickOne[T any](r *rand.Rand, list []T) T {
	var zero T
	if len(list) == 0 {
		return zero
	}
	if r == nil {
		return list[rand.IntN(len(list))]
	}
	return list[r.IntN(len(list))]
}

// randomStem returns stemLength distinct characters from stemAlphabet.
func randomStem(r *rand.Rand) string {
	var perm []int
	if r == nil {
		perm = rand.Perm(len(stemAlphabet))
	} else {
		perm = r.Perm(len(stemAlphabet))
	}

	b := make([]byte, stemLength)
	for i := range b {
		b[i] = stemAlphabet[perm[i]]
	}
	return string(b)
}
