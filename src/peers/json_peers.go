package peers

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"sync"
)

// JSONPeers is used to read the initial peers of a node from a JSON file. This
// allows human operators to manipulate the file.
type JSONPeers struct {
	l    sync.Mutex
	path string
}

// NewJSONPeers creates a new JSONPeers reading the JSON file at path.
func NewJSONPeers(path string) *JSONPeers {
	return &JSONPeers{
		path: path,
	}
}

// Path returns the full path of the JSON file.
func (j *JSONPeers) Path() string {
	return j.path
}

// Peers parses the underlying JSON file and returns the addresses it lists.
func (j *JSONPeers) Peers() ([]Address, error) {
	j.l.Lock()
	defer j.l.Unlock()

	// Read the file
	buf, err := ioutil.ReadFile(j.path)
	if err != nil {
		return nil, err
	}

	// Check for no peers
	if len(bytes.TrimSpace(buf)) == 0 {
		return nil, nil
	}

	// Decode the peers
	var raw []string
	dec := json.NewDecoder(bytes.NewReader(buf))
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	addrs := make([]Address, 0, len(raw))
	for _, r := range raw {
		a, err := ParseAddress(r)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}

	return addrs, nil
}
