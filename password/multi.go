package password

// Hasher is the contract shared by every algorithm in this package.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encodedHash string) (bool, error)
	NeedsUpgrade(encodedHash string) (bool, error)
}

// Scheme is a Hasher that can tell its own encodings apart from others.
type Scheme interface {
	Hasher
	Recognizes(encodedHash string) bool
}

// Multi hashes with a primary scheme and verifies against any configured
// scheme, selected by the hash prefix. It lets a deployment move from bcrypt
// to argon2id (or back) without invalidating stored credentials.
type Multi struct {
	primary Scheme
	schemes []Scheme
}

// NewMulti returns a Multi that writes with primary and also reads legacy.
func NewMulti(primary Scheme, legacy ...Scheme) *Multi {
	schemes := make([]Scheme, 0, 1+len(legacy))
	schemes = append(schemes, primary)
	for _, s := range legacy {
		if s != nil {
			schemes = append(schemes, s)
		}
	}
	return &Multi{primary: primary, schemes: schemes}
}

func (m *Multi) Hash(plaintext string) (string, error) {
	return m.primary.Hash(plaintext)
}

func (m *Multi) Verify(plaintext, encodedHash string) (bool, error) {
	s := m.schemeFor(encodedHash)
	if s == nil {
		return false, corrupt("unrecognized hash format")
	}
	return s.Verify(plaintext, encodedHash)
}

// NeedsUpgrade is true for any hash the primary scheme did not produce, and
// otherwise defers to the primary's own parameter comparison.
func (m *Multi) NeedsUpgrade(encodedHash string) (bool, error) {
	if m.schemeFor(encodedHash) == nil {
		return false, corrupt("unrecognized hash format")
	}
	if !m.primary.Recognizes(encodedHash) {
		return true, nil
	}
	return m.primary.NeedsUpgrade(encodedHash)
}

func (m *Multi) Recognizes(encodedHash string) bool {
	return m.schemeFor(encodedHash) != nil
}

func (m *Multi) schemeFor(encodedHash string) Scheme {
	for _, s := range m.schemes {
		if s.Recognizes(encodedHash) {
			return s
		}
	}
	return nil
}
