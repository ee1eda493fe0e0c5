package remote

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/tinygit/tinygit/pkg/object"
)

const uploadPackService = "git-upload-pack"

// AdvertisedRef is one reference from the discovery response.
type AdvertisedRef struct {
	Name string
	Hash object.Hash
}

// Advertisement is the parsed result of ref discovery. Parsing is a pure
// stage: it records what the server said and nothing else. Want-list
// construction is derived separately via WantHashes.
type Advertisement struct {
	Refs         []AdvertisedRef
	Capabilities Capabilities

	// HeadSymref is the symbolic target HEAD points at (e.g.
	// "refs/heads/main"), or empty if the server advertised no symref.
	HeadSymref string
}

// Ref returns the advertised hash for name, if present.
func (a *Advertisement) Ref(name string) (object.Hash, bool) {
	for _, r := range a.Refs {
		if r.Name == name {
			return r.Hash, true
		}
	}
	return "", false
}

// WantHashes returns the distinct advertised object hashes in first-seen
// order. Several refs pointing at the same commit yield one want.
func (a *Advertisement) WantHashes() []object.Hash {
	seen := make(map[object.Hash]struct{}, len(a.Refs))
	wants := make([]object.Hash, 0, len(a.Refs))
	for _, r := range a.Refs {
		if _, ok := seen[r.Hash]; ok {
			continue
		}
		seen[r.Hash] = struct{}{}
		wants = append(wants, r.Hash)
	}
	return wants
}

// parseAdvertisement parses a smart-HTTP ref discovery response body:
// a "# service=git-upload-pack" preamble pkt-line, a flush, then one
// "<40-hex> <refname>[\0<capabilities>]" line per ref, then a flush.
// Only the first ref line carries the capability list.
func parseAdvertisement(body []byte) (*Advertisement, error) {
	s := &pktScanner{buf: body}

	preamble, flush, err := s.next()
	if err != nil {
		return nil, err
	}
	if flush || !bytes.HasPrefix(trimLF(preamble), []byte("# service="+uploadPackService)) {
		return nil, fmt.Errorf("%w: missing service preamble, got %q", ErrProtocol, preamble)
	}
	if _, flush, err = s.next(); err != nil {
		return nil, err
	} else if !flush {
		return nil, fmt.Errorf("%w: expected flush after service preamble", ErrProtocol)
	}

	adv := &Advertisement{}
	for {
		line, flush, err := s.next()
		if err != nil {
			return nil, err
		}
		if flush {
			break
		}
		line = trimLF(line)

		refPart := line
		if nul := bytes.IndexByte(line, 0); nul >= 0 {
			refPart = line[:nul]
			if len(adv.Refs) == 0 {
				adv.Capabilities = ParseCapabilities(string(line[nul+1:]))
				adv.HeadSymref = adv.Capabilities.Symref("HEAD")
			}
		}

		hashTok, name, ok := strings.Cut(string(refPart), " ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed ref line %q", ErrProtocol, line)
		}
		h := object.Hash(hashTok)
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("%w: ref %q: %v", ErrProtocol, name, err)
		}
		adv.Refs = append(adv.Refs, AdvertisedRef{Name: name, Hash: h})
	}

	return adv, nil
}

// Capabilities represents the space-separated capability tokens a server
// advertises. Tokens may carry values, e.g. "symref=HEAD:refs/heads/main".
type Capabilities struct {
	set map[string]struct{}
}

// ParseCapabilities parses a space-separated capability string.
func ParseCapabilities(raw string) Capabilities {
	caps := Capabilities{set: make(map[string]struct{})}
	for _, tok := range strings.Fields(raw) {
		caps.set[tok] = struct{}{}
	}
	return caps
}

// Has returns true if the bare capability is present.
func (c Capabilities) Has(name string) bool {
	_, ok := c.set[name]
	return ok
}

// Symref returns the target of a "symref=<from>:<target>" capability for the
// given source ref, or empty.
func (c Capabilities) Symref(from string) string {
	prefix := "symref=" + from + ":"
	for tok := range c.set {
		if target, ok := strings.CutPrefix(tok, prefix); ok && target != "" {
			return target
		}
	}
	return ""
}

// String returns a sorted space-separated capability string.
func (c Capabilities) String() string {
	names := make([]string, 0, len(c.set))
	for k := range c.set {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}
