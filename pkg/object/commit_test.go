package object

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCommitRoundTrip(t *testing.T) {
	c := &CommitObj{
		TreeHash: "ce013625030ba8dba906f756967f9e9ca394464a",
		Parents: []Hash{
			"e965047ad7c57865823c7d992b1d046ea66edf78",
			"00ff047ad7c57865823c7d992b1d046ea66e0000",
		},
		Author:    "A U Thor <author@example.com> 1700000000 +0000",
		Committer: "C O Mitter <committer@example.com> 1700000001 +0000",
		Message:   "merge the thing\n\nlonger body\n",
	}
	got, err := UnmarshalCommit(MarshalCommit(c))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalCommitSkipsUnknownHeaders(t *testing.T) {
	payload := "tree ce013625030ba8dba906f756967f9e9ca394464a\n" +
		"author A <a@example.com> 1700000000 +0000\n" +
		"committer A <a@example.com> 1700000000 +0000\n" +
		"gpgsig -----BEGIN PGP SIGNATURE-----\n" +
		" fake signature line\n" +
		" -----END PGP SIGNATURE-----\n" +
		"\n" +
		"signed commit\n"
	c, err := UnmarshalCommit([]byte(payload))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if c.TreeHash != "ce013625030ba8dba906f756967f9e9ca394464a" {
		t.Errorf("TreeHash = %s", c.TreeHash)
	}
	if c.Message != "signed commit\n" {
		t.Errorf("Message = %q", c.Message)
	}
}

func TestUnmarshalCommitMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"no separator", "tree ce013625030ba8dba906f756967f9e9ca394464a\n"},
		{"missing tree", "author A <a@example.com> 1700000000 +0000\ncommitter A <a@example.com> 1700000000 +0000\n\nmsg\n"},
		{"bad tree hash", "tree nothex\n\nmsg\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := UnmarshalCommit([]byte(tc.payload)); !errors.Is(err, ErrCorruptObject) {
				t.Fatalf("UnmarshalCommit = %v, want ErrCorruptObject", err)
			}
		})
	}
}
