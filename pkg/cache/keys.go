package cache

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered document for the trace
	// whose content hash is inputHash.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists every option that changes the rendered bytes.
type ArtifactKeyOpts struct {
	Format      string      `json:"format"`
	Palette     string      `json:"palette"`
	Seed        uint64      `json:"seed"`
	Title       string      `json:"title"`
	SearchColor string      `json:"search_color"`
	Geometry    interface{} `json:"geometry"`
}

// DefaultKeyer hashes the input hash and options into "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

var _ Keyer = DefaultKeyer{}
