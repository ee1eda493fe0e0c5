package remote

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tinygit/tinygit/pkg/object"
)

// fixtureRemote serves a minimal upload-pack remote over httptest: one
// commit pointing at a tree with two blobs, one of which is packed as a
// ref-delta against the other.
func fixtureRemote(t *testing.T) (*httptest.Server, object.Hash) {
	t.Helper()

	readmeData := []byte("Hello\n")
	licenseData := []byte("Hello\nworld\n")
	readmeHash := object.HashObject(object.TypeBlob, readmeData)
	licenseHash := object.HashObject(object.TypeBlob, licenseData)

	treeData, err := object.MarshalTree([]object.TreeEntry{
		{Mode: object.TreeModeFile, Name: "LICENSE", Hash: licenseHash},
		{Mode: object.TreeModeFile, Name: "README", Hash: readmeHash},
	})
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	treeHash := object.HashObject(object.TypeTree, treeData)

	commitData := object.MarshalCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Author:    "Alice <alice@example.com> 1700000000 +0000",
		Committer: "Alice <alice@example.com> 1700000000 +0000",
		Message:   "initial import\n",
	})
	commitHash := object.HashObject(object.TypeCommit, commitData)

	var pack bytes.Buffer
	pw, err := object.NewPackWriter(&pack, 4)
	if err != nil {
		t.Fatalf("NewPackWriter: %v", err)
	}
	if err := pw.WriteEntry(object.PackCommit, commitData); err != nil {
		t.Fatalf("write commit entry: %v", err)
	}
	if err := pw.WriteEntry(object.PackTree, treeData); err != nil {
		t.Fatalf("write tree entry: %v", err)
	}
	if err := pw.WriteEntry(object.PackBlob, readmeData); err != nil {
		t.Fatalf("write blob entry: %v", err)
	}
	if err := pw.WriteRefDelta(readmeHash, readmeData, licenseData); err != nil {
		t.Fatalf("write ref-delta entry: %v", err)
	}
	if err := pw.Close(); err != nil {
		t.Fatalf("close pack: %v", err)
	}

	adv := advertisementFixture(
		"symref=HEAD:refs/heads/main",
		AdvertisedRef{Name: "HEAD", Hash: commitHash},
		AdvertisedRef{Name: "refs/heads/main", Hash: commitHash},
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/info/refs":
			w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
			w.Write(adv)
		case "/git-upload-pack":
			w.Header().Set("Content-Type", "application/x-git-upload-pack-result")
			w.Write([]byte("0008NAK\n"))
			w.Write(pack.Bytes())
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, commitHash
}

func TestFetchIntoStore(t *testing.T) {
	srv, commitHash := fixtureRemote(t)

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store := object.NewStore(t.TempDir())

	sum, err := FetchIntoStore(context.Background(), c, store)
	if err != nil {
		t.Fatalf("FetchIntoStore: %v", err)
	}
	if sum.Pack == nil || sum.Pack.Objects != 4 || sum.Pack.Deltas != 1 {
		t.Fatalf("pack summary = %+v", sum.Pack)
	}
	if sum.Advertisement.HeadSymref != "refs/heads/main" {
		t.Errorf("HeadSymref = %q", sum.Advertisement.HeadSymref)
	}

	typ, commitData, err := store.Read(commitHash)
	if err != nil {
		t.Fatalf("read commit: %v", err)
	}
	if typ != object.TypeCommit {
		t.Fatalf("commit object has type %s", typ)
	}
	commit, err := object.UnmarshalCommit(commitData)
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}

	typ, treeData, err := store.Read(commit.TreeHash)
	if err != nil {
		t.Fatalf("read tree: %v", err)
	}
	if typ != object.TypeTree {
		t.Fatalf("tree object has type %s", typ)
	}
	entries, err := object.UnmarshalTree(treeData)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("tree entries = %v", entries)
	}

	// The ref-delta entry must be stored under the base object's type with
	// the reconstructed content.
	typ, licenseData, err := store.Read(entries[0].Hash)
	if err != nil {
		t.Fatalf("read delta-reconstructed blob: %v", err)
	}
	if typ != object.TypeBlob || string(licenseData) != "Hello\nworld\n" {
		t.Fatalf("reconstructed blob = (%s, %q)", typ, licenseData)
	}
}

func TestFetchIntoStoreEmptyRemote(t *testing.T) {
	var adv []byte
	adv = appendPktLine(adv, "# service=git-upload-pack\n")
	adv = appendFlushPkt(adv)
	adv = appendFlushPkt(adv)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info/refs" {
			t.Errorf("unexpected request to %s on empty remote", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
		w.Write(adv)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store := object.NewStore(t.TempDir())

	sum, err := FetchIntoStore(context.Background(), c, store)
	if err != nil {
		t.Fatalf("FetchIntoStore: %v", err)
	}
	if sum.Pack != nil {
		t.Fatalf("pack summary = %+v, want nil for empty remote", sum.Pack)
	}
}
