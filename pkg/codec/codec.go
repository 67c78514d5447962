// Package codec centralizes cache value and snapshot encoding.
//
// Persisted cache files are self-describing: the store writes the codec
// name into the file header and selects the codec by name on load, so a
// configuration change never silently misreads existing files.
package codec

// Codec encodes and decodes cached values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}

// ByName returns a built-in codec by its stable name.
// Stores use it to decode snapshots written under a different
// configuration.
func ByName(name string) (Codec, bool) {
	switch name {
	case JSON{}.Name():
		return JSON{}, true
	case GoJSON{}.Name():
		return GoJSON{}, true
	default:
		return nil, false
	}
}
