package admission

import "sync"

// IdempotencyIndex maps caller-supplied idempotency keys to job ids. Entries
// never expire; growth is bounded by the kiosk's process lifetime.
type IdempotencyIndex struct {
	mu   sync.Mutex
	keys map[string]string
}

// NewIdempotencyIndex creates an empty index.
func NewIdempotencyIndex() *IdempotencyIndex {
	return &IdempotencyIndex{keys: make(map[string]string)}
}

// Lookup returns the job id recorded for key, if any.
func (i *IdempotencyIndex) Lookup(key string) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	id, ok := i.keys[key]
	return id, ok
}

// LoadOrCreate returns the job id already recorded for key, or invokes create
// and records its result. The lock is held across create, so two concurrent
// submissions with the same key can never both create a job.
func (i *IdempotencyIndex) LoadOrCreate(key string, create func() (string, error)) (jobID string, existing bool, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if id, ok := i.keys[key]; ok {
		return id, true, nil
	}
	id, err := create()
	if err != nil {
		return "", false, err
	}
	i.keys[key] = id
	return id, false, nil
}
