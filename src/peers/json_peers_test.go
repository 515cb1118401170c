package peers

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestJSONPeers(t *testing.T) {
	// Create a test dir
	dir, err := ioutil.TempDir("", "meshkv")
	if err != nil {
		t.Fatalf("err: %v ", err)
	}
	defer os.RemoveAll(dir)

	// Create the store
	store := NewJSONPeers(filepath.Join(dir, "peers.json"))

	// Try a read, should get nothing
	addrs, err := store.Peers()
	if err == nil {
		t.Fatalf("store.Peers() should generate an error")
	}
	if addrs != nil {
		t.Fatalf("peers: %v", addrs)
	}

	content := `["127.0.0.1:9000", "localhost:9001", "[::1]:9002"]`
	if err := ioutil.WriteFile(store.Path(), []byte(content), 0644); err != nil {
		t.Fatalf("err: %v", err)
	}

	expected := []Address{
		NewAddress("127.0.0.1", 9000),
		NewAddress("localhost", 9001),
		NewAddress("::1", 9002),
	}

	// Try a read, should find 3 peers
	addrs, err = store.Peers()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !reflect.DeepEqual(addrs, expected) {
		t.Fatalf("peers should be %v, not %v", expected, addrs)
	}
}

func TestJSONPeersEmptyFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "meshkv")
	if err != nil {
		t.Fatalf("err: %v ", err)
	}
	defer os.RemoveAll(dir)

	store := NewJSONPeers(filepath.Join(dir, "peers.json"))

	if err := ioutil.WriteFile(store.Path(), []byte("\n"), 0644); err != nil {
		t.Fatalf("err: %v", err)
	}

	addrs, err := store.Peers()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(addrs) != 0 {
		t.Fatalf("peers: %v", addrs)
	}
}

func TestJSONPeersBadAddress(t *testing.T) {
	dir, err := ioutil.TempDir("", "meshkv")
	if err != nil {
		t.Fatalf("err: %v ", err)
	}
	defer os.RemoveAll(dir)

	store := NewJSONPeers(filepath.Join(dir, "peers.json"))

	if err := ioutil.WriteFile(store.Path(), []byte(`["127.0.0.1:9000", "nope"]`), 0644); err != nil {
		t.Fatalf("err: %v", err)
	}

	if _, err := store.Peers(); err == nil {
		t.Fatalf("an invalid address should be reported")
	}
}
