package storerepofake

import (
	"sync"

	"github.com/jrsteele09/estate-client/token/store"
)

var _ store.KV = (*FakeKV)(nil)

// FakeKV is an in-memory store.KV. SetErr and GetErr make the next calls fail,
// which is how tests simulate an unwritable or unreadable disk.
type FakeKV struct {
	values map[string][]byte
	lock   sync.RWMutex

	SetErr error
	GetErr error

	Sets   int
	Clears int
}

func NewFakeKV() *FakeKV {
	return &FakeKV{values: make(map[string][]byte)}
}

func (kv *FakeKV) Get(key string) ([]byte, error) {
	kv.lock.RLock()
	defer kv.lock.RUnlock()

	if kv.GetErr != nil {
		return nil, kv.GetErr
	}
	v, ok := kv.values[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (kv *FakeKV) Set(values map[string][]byte) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	if kv.SetErr != nil {
		return kv.SetErr
	}
	kv.Sets++
	for k, v := range values {
		kv.values[k] = append([]byte(nil), v...)
	}
	return nil
}

func (kv *FakeKV) Clear(keys ...string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	kv.Clears++
	for _, k := range keys {
		delete(kv.values, k)
	}
	return nil
}

// Put writes a raw value directly, bypassing any encoding (used to plant
// corrupt data).
func (kv *FakeKV) Put(key string, raw []byte) {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	kv.values[key] = raw
}

// Len is the number of keys held.
func (kv *FakeKV) Len() int {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	return len(kv.values)
}
