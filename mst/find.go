package mst

import "github.com/tudgoi/pika/codec"

// Find looks up key starting from node, descending into child refs as
// needed. It returns (value, true, nil) on a hit and ("", false, nil)
// when the key is absent from the tree rooted at node.
func Find(repo *Repo, node *Node, key codec.TreeKey) (string, bool, error) {
	if node == nil {
		return "", false, nil
	}
	items := node.items

	for i, it := range items {
		if !it.IsPayload() {
			continue
		}
		cmp := key.Compare(it.key)
		switch {
		case cmp == 0:
			return it.value, true, nil
		case cmp < 0:
			// Key belongs before this payload; descend into the
			// preceding reference if one exists.
			if i > 0 && items[i-1].IsRef() {
				child, err := repo.Get(items[i-1].RefHash())
				if err != nil {
					return "", false, err
				}
				return Find(repo, child, key)
			}
			return "", false, nil
		}
		// Greater: keep scanning.
	}

	// Key is greater than every payload at this level; check the
	// trailing reference if one exists.
	if len(items) > 0 && items[len(items)-1].IsRef() {
		child, err := repo.Get(items[len(items)-1].RefHash())
		if err != nil {
			return "", false, err
		}
		return Find(repo, child, key)
	}
	return "", false, nil
}
