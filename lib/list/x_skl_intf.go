package list

import (
	"github.com/benz9527/xskl/lib/infra"
)

// SkipList is an ordered map with unique keys.
// All the methods are serialized by the lock owned by the instance.
type SkipList[K infra.OrderedKey, V any] interface {
	// Levels returns the highest level that holds a data node.
	Levels() int32
	// MaxLevel returns the level limitation fixed at construction.
	MaxLevel() int32
	// Len returns the number of data nodes. It is read under the lock,
	// so it never observes a half-applied insert or remove.
	Len() int64
	// Insert adds a new key. Duplicated key is rejected and the stored
	// value stays untouched.
	Insert(key K, val V) InsertStatus
	// Search returns the value of key and whether the key exists.
	Search(key K) (V, bool)
	// Update replaces the value of an existing key in place.
	Update(key K, val V) UpdateStatus
	// Remove unlinks the key from every level it participates in.
	Remove(key K) RemoveStatus
	// Foreach walks the data nodes in key order until action returns false.
	// The lock is held during the walk, so action must not call back
	// into the same skip-list. Each item is a copy taken at the visit,
	// it is safe to keep but doesn't observe later updates.
	Foreach(action func(i int64, item SklIterationItem[K, V]) bool)
	// Dump renders the level chains from top to bottom. Debug only.
	Dump() string
	// Release drops all the data nodes.
	Release()
}

type SklElement[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
}

type SklIterationItem[K infra.OrderedKey, V any] interface {
	SklElement[K, V]
	NodeLevel() uint32
}

type InsertStatus uint8

const (
	Inserted InsertStatus = iota
	AlreadyExists
)

func (s InsertStatus) String() string {
	switch s {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already exists"
	default:
	}
	return "unknown"
}

type RemoveStatus uint8

const (
	Removed RemoveStatus = iota
	NotFound
)

func (s RemoveStatus) String() string {
	switch s {
	case Removed:
		return "removed"
	case NotFound:
		return "not found"
	default:
	}
	return "unknown"
}

type UpdateStatus uint8

const (
	Updated UpdateStatus = iota
	UpdateNotFound
)

func (s UpdateStatus) String() string {
	switch s {
	case Updated:
		return "updated"
	case UpdateNotFound:
		return "not found"
	default:
	}
	return "unknown"
}
