package pdistributed

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/raft"
)

// command is one Raft log entry: an operation name plus its JSON payload,
// matching cuemby-warren's pkg/manager.Command shape.
type command struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value []byte `json:"value,omitempty"`
}

const (
	opSet    = "set"
	opDelete = "delete"
)

// stateFSM is the Raft finite state machine backing a Distributed object: a
// single replicated string-keyed map, generic enough to back the lock
// manager's lock table, the messaging handler table, and index metadata.
type stateFSM struct {
	mu    sync.RWMutex
	state map[string][]byte
}

func newStateFSM() *stateFSM {
	return &stateFSM{state: make(map[string][]byte)}
}

func (f *stateFSM) Apply(log *raft.Log) interface{} {
	var cmd command
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("pdistributed: unmarshal command: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch cmd.Op {
	case opSet:
		f.state[cmd.Key] = cmd.Value
		return nil
	case opDelete:
		delete(f.state, cmd.Key)
		return nil
	default:
		return fmt.Errorf("pdistributed: unknown command op %q", cmd.Op)
	}
}

func (f *stateFSM) get(key string) ([]byte, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.state[key]
	return v, ok
}

func (f *stateFSM) snapshotData() map[string][]byte {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string][]byte, len(f.state))
	for k, v := range f.state {
		out[k] = v
	}
	return out
}

func (f *stateFSM) Snapshot() (raft.FSMSnapshot, error) {
	return &stateSnapshot{data: f.snapshotData()}, nil
}

func (f *stateFSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()
	var data map[string][]byte
	if err := json.NewDecoder(rc).Decode(&data); err != nil {
		return fmt.Errorf("pdistributed: decode snapshot: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = data
	return nil
}

type stateSnapshot struct {
	data map[string][]byte
}

func (s *stateSnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		if err := json.NewEncoder(sink).Encode(s.data); err != nil {
			return err
		}
		return sink.Close()
	}()
	if err != nil {
		sink.Cancel()
	}
	return err
}

func (s *stateSnapshot) Release() {}
