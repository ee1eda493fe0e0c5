package object

import (
	"bytes"
	"fmt"
	"strings"
)

// MarshalCommit serializes a CommitObj to the canonical text format:
//
//	tree H
//	parent H     (zero or more)
//	author A
//	committer C
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form. Header keys
// this client does not model (encoding, gpgsig and its continuation lines)
// are skipped rather than rejected, since remote-created commits may carry
// them.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: %w: missing header/message separator", ErrCorruptObject)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		if strings.HasPrefix(line, " ") {
			// Continuation of a multi-line header (e.g. gpgsig).
			continue
		}
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: %w: malformed header line %q", ErrCorruptObject, line)
		}
		switch key {
		case "tree":
			if err := Hash(val).Validate(); err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w: tree: %v", ErrCorruptObject, err)
			}
			c.TreeHash = Hash(val)
		case "parent":
			if err := Hash(val).Validate(); err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w: parent: %v", ErrCorruptObject, err)
			}
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			c.Author = val
		case "committer":
			c.Committer = val
		}
	}
	if c.TreeHash == "" {
		return nil, fmt.Errorf("unmarshal commit: %w: missing tree header", ErrCorruptObject)
	}
	return c, nil
}
