package cache

import "strings"

// Key kinds, used as key prefixes and as the keyType of cache hooks.
const (
	KindSample   = "sample"
	KindPath     = "path"
	KindArtifact = "artifact"
)

// SampleKeyOpts holds the options that affect a sampled grid.
type SampleKeyOpts struct {
	Spacing   int   `json:"spacing"`
	Threshold uint8 `json:"threshold"`
}

// PathKeyOpts holds the options that affect a built path.
type PathKeyOpts struct {
	Strategy string `json:"strategy"`
	MaxSteps int    `json:"max_steps"`
}

// ArtifactKeyOpts holds the options that affect a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Style    string  `json:"style"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Block    float64 `json:"block"`
	Scale    float64 `json:"scale"`
	Seed     uint64  `json:"seed"`
	Reveal   int     `json:"reveal"`
	Loudness float64 `json:"loudness"`
	Panels   bool    `json:"panels"`
	Gallery  bool    `json:"gallery"`
}

// Keyer derives cache keys for pipeline stages.
type Keyer interface {
	// SampleKey keys the grid sampled from an image with the given content hash.
	SampleKey(imageHash string, opts SampleKeyOpts) string

	// PathKey keys the path built over the grid with the given hash.
	PathKey(gridHash string, opts PathKeyOpts) string

	// ArtifactKey keys an output rendered from the given path hash.
	ArtifactKey(pathHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SampleKey(imageHash string, opts SampleKeyOpts) string {
	return hashKey(KindSample, imageHash, opts)
}

func (DefaultKeyer) PathKey(gridHash string, opts PathKeyOpts) string {
	return hashKey(KindPath, gridHash, opts)
}

func (DefaultKeyer) ArtifactKey(pathHash string, opts ArtifactKeyOpts) string {
	return hashKey(KindArtifact, pathHash, opts)
}

// KindOf returns the kind prefix of a key, ignoring any scope prefix.
func KindOf(key string) string {
	for _, kind := range []string{KindSample, KindPath, KindArtifact} {
		if strings.HasPrefix(key, kind+":") || strings.Contains(key, ":"+kind+":") {
			return kind
		}
	}
	return "unknown"
}
