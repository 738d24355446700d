package kvfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-events-client/securestore"
)

var _ securestore.KV = (*FakeKV)(nil)

// FakeKV is an in-memory securestore.KV. Failures can be scripted per operation.
type FakeKV struct {
	values map[string]string
	lock   sync.RWMutex

	GetErr    error
	SetErr    error
	DeleteErr error

	gets, sets, deletes int
}

func NewFakeKV() *FakeKV {
	return &FakeKV{values: make(map[string]string)}
}

func (kv *FakeKV) Get(_ context.Context, key string) (string, bool, error) {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	kv.gets++
	if kv.GetErr != nil {
		return "", false, kv.GetErr
	}
	v, ok := kv.values[key]
	return v, ok, nil
}

func (kv *FakeKV) Set(_ context.Context, key, value string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	kv.sets++
	if kv.SetErr != nil {
		return kv.SetErr
	}
	kv.values[key] = value
	return nil
}

func (kv *FakeKV) Delete(_ context.Context, key string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	kv.deletes++
	if kv.DeleteErr != nil {
		return kv.DeleteErr
	}
	delete(kv.values, key)
	return nil
}

// Value returns the raw stored value, bypassing failure injection.
func (kv *FakeKV) Value(key string) (string, bool) {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	v, ok := kv.values[key]
	return v, ok
}

// Gets returns how many Get calls reached the fake.
func (kv *FakeKV) Gets() int {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	return kv.gets
}

// Sets returns how many Set calls reached the fake.
func (kv *FakeKV) Sets() int {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	return kv.sets
}
