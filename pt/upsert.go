package pt

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/tudgoi/pika/codec"
)

// ErrEmptyUpsert is returned if chunking an upsert somehow produced no
// chunks at all; given an upsert always contributes at least one item,
// this should be unreachable.
var ErrEmptyUpsert = errors.New("pt: upsert produced no chunks")

// Upsert inserts or updates key in the tree rooted at root and returns
// the hash of the new root. Unlike the MST engine, the root here may
// itself gain a level (it never loses one): a leaf chunk that crosses a boundary
// becomes several chunks under a new internal root, which is why the
// result is collapsed until exactly one top-level chunk remains.
func Upsert(repo *Repo, root *Node, modulus uint32, key codec.TreeKey, value string) (codec.Hash, error) {
	refs, err := upsertNode(repo, root, modulus, key, value)
	if err != nil {
		return codec.Hash{}, err
	}
	for len(refs) > 1 {
		refs, err = chunkAndSave(repo, modulus, refs)
		if err != nil {
			return codec.Hash{}, err
		}
	}
	if len(refs) == 0 {
		return codec.Hash{}, ErrEmptyUpsert
	}
	return refs[0].RefHash(), nil
}

// upsertNode applies key/value to node and returns the list of Ref items
// that should replace node in its parent — length 1 if node's chunking
// was undisturbed, more if it split.
func upsertNode(repo *Repo, node *Node, modulus uint32, key codec.TreeKey, value string) ([]Item, error) {
	var newItems []Item

	if node.IsLeaf() {
		newItems = append(newItems, node.items...)
		idx := firstGE(newItems, key)
		if idx < len(newItems) && newItems[idx].key.Equal(key) {
			newItems[idx] = Payload(key, value)
		} else {
			newItems = insertAt(newItems, idx, Payload(key, value))
		}
	} else {
		idx := firstGT(node.items, key)
		childIdx := 0
		if idx > 0 {
			childIdx = idx - 1
		}
		child, err := repo.Get(node.items[childIdx].RefHash())
		if err != nil {
			return nil, err
		}
		newChildRefs, err := upsertNode(repo, child, modulus, key, value)
		if err != nil {
			return nil, err
		}
		newItems = append(newItems, node.items...)
		newItems = spliceReplace(newItems, childIdx, newChildRefs)
	}

	return chunkAndSave(repo, modulus, newItems)
}

// chunkAndSave walks items in order, folding each item's key bytes into a
// rolling hash, and cuts a new chunk every time the hash reports a
// boundary. Each chunk is saved as its own node; the returned slice names
// each chunk's first key and hash, ready to become Ref items one level up.
func chunkAndSave(repo *Repo, modulus uint32, items []Item) ([]Item, error) {
	var result []Item
	var chunk []Item
	hasher := NewRollingHash(modulus)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		node := &Node{items: chunk}
		h, err := repo.Put(node)
		if err != nil {
			return err
		}
		result = append(result, Ref(node.items[0].key, h))
		chunk = nil
		return nil
	}

	for _, it := range items {
		for _, b := range it.key.Bytes() {
			hasher.Update(b)
		}
		chunk = append(chunk, it)
		if hasher.IsBoundary() {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return result, nil
}

// Find looks up key starting from node, descending into child refs as
// needed.
func Find(repo *Repo, node *Node, key codec.TreeKey) (string, bool, error) {
	if node == nil || len(node.items) == 0 {
		return "", false, nil
	}

	idx := firstGT(node.items, key)

	if node.IsLeaf() {
		if idx > 0 && node.items[idx-1].key.Equal(key) {
			return node.items[idx-1].value, true, nil
		}
		return "", false, nil
	}

	if idx > 0 {
		child, err := repo.Get(node.items[idx-1].RefHash())
		if err != nil {
			return "", false, err
		}
		return Find(repo, child, key)
	}
	return "", false, nil
}

// Height reports the number of levels from node down to its leaves,
// inclusive of node itself.
func Height(repo *Repo, node *Node) (int, error) {
	if len(node.items) == 0 || node.items[0].IsPayload() {
		return 1, nil
	}
	child, err := repo.Get(node.items[0].RefHash())
	if err != nil {
		return 0, err
	}
	h, err := Height(repo, child)
	if err != nil {
		return 0, err
	}
	return 1 + h, nil
}

// firstGE returns the first index in items (sorted by key) whose key is
// >= target, or len(items) if none is.
func firstGE(items []Item, target codec.TreeKey) int {
	return sort.Search(len(items), func(i int) bool {
		return items[i].key.Compare(target) >= 0
	})
}

// firstGT returns the first index in items (sorted by key) whose key is
// > target, or len(items) if none is.
func firstGT(items []Item, target codec.TreeKey) int {
	return sort.Search(len(items), func(i int) bool {
		return items[i].key.Compare(target) > 0
	})
}

func insertAt(items []Item, idx int, it Item) []Item {
	items = append(items, Item{})
	copy(items[idx+1:], items[idx:])
	items[idx] = it
	return items
}

func spliceReplace(items []Item, idx int, replacement []Item) []Item {
	out := make([]Item, 0, len(items)-1+len(replacement))
	out = append(out, items[:idx]...)
	out = append(out, replacement...)
	out = append(out, items[idx+1:]...)
	return out
}
