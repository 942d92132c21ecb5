package mst

import "github.com/tudgoi/pika/codec"

// Upsert inserts or updates key in the tree rooted at root and returns the
// hash of the resulting new root. root is never mutated; every level
// touched on the path to key is rebuilt as a fresh node and written to
// repo, which is what makes the previous root hash remain valid and
// readable after the call.
func Upsert(repo *Repo, root *Node, key codec.TreeKey, value string) (codec.Hash, error) {
	newRoot, err := upsertNode(repo, root, key, value)
	if err != nil {
		return codec.Hash{}, err
	}
	return repo.Put(newRoot)
}

func upsertNode(repo *Repo, node *Node, key codec.TreeKey, value string) (*Node, error) {
	reqLevel := Level(key)
	nodeLevel, ok := node.estimateLevel()
	if !ok {
		nodeLevel = reqLevel
	}

	switch {
	case reqLevel > nodeLevel:
		leftHash, rightHash, err := split(repo, node, key)
		if err != nil {
			return nil, err
		}
		return &Node{items: []Item{Ref(leftHash), Payload(key, value), Ref(rightHash)}}, nil
	case reqLevel == nodeLevel:
		return insertLocal(repo, node, key, value)
	default:
		return insertIntoChild(repo, node, key, value)
	}
}

// insertLocal places key directly among this node's payloads. If the
// insertion point falls on an existing child reference, that child must
// be split around key so the new item still separates keys strictly less
// than it (left) from keys strictly greater (right).
func insertLocal(repo *Repo, node *Node, key codec.TreeKey, value string) (*Node, error) {
	items := node.items

	insertPos := 0
	splitTargetIdx := -1
	foundIdx := -1
	prevWasRef := false

	for i := 0; i < len(items); i++ {
		it := items[i]
		if it.IsPayload() {
			cmp := key.Compare(it.key)
			if cmp == 0 {
				foundIdx = i
				break
			} else if cmp < 0 {
				insertPos = i
				if i > 0 && prevWasRef {
					splitTargetIdx = i - 1
				}
				break
			}
			insertPos = i + 1
		} else if insertPos == i {
			insertPos = i + 1
		}
		prevWasRef = it.IsRef()
	}

	if foundIdx >= 0 {
		newItems := make([]Item, len(items))
		copy(newItems, items)
		newItems[foundIdx] = Payload(key, value)
		return &Node{items: newItems}, nil
	}

	if insertPos == len(items) && len(items) > 0 && items[len(items)-1].IsRef() {
		splitTargetIdx = len(items) - 1
	}

	if splitTargetIdx >= 0 {
		child, err := repo.Get(items[splitTargetIdx].RefHash())
		if err != nil {
			return nil, err
		}
		lHash, rHash, err := split(repo, child, key)
		if err != nil {
			return nil, err
		}
		newItems := make([]Item, 0, len(items)+2)
		newItems = append(newItems, items[:splitTargetIdx]...)
		newItems = append(newItems, Ref(lHash), Payload(key, value), Ref(rHash))
		newItems = append(newItems, items[splitTargetIdx+1:]...)
		return &Node{items: newItems}, nil
	}

	newItems := make([]Item, 0, len(items)+1)
	newItems = append(newItems, items[:insertPos]...)
	newItems = append(newItems, Payload(key, value))
	newItems = append(newItems, items[insertPos:]...)
	return &Node{items: newItems}, nil
}

// insertIntoChild descends into the child reference whose subtree must
// contain key, recurses, and replaces that reference with the child's new
// hash. If no reference exists where key belongs, a fresh single-item
// child is created.
func insertIntoChild(repo *Repo, node *Node, key codec.TreeKey, value string) (*Node, error) {
	items := node.items
	childIdx := -1

	for i, it := range items {
		if !it.IsPayload() {
			continue
		}
		if key.Compare(it.key) < 0 {
			if i > 0 && items[i-1].IsRef() {
				childIdx = i - 1
			} else {
				childIdx = i
			}
			break
		}
	}

	if childIdx < 0 {
		if len(items) > 0 && items[len(items)-1].IsRef() {
			childIdx = len(items) - 1
		} else {
			childIdx = len(items)
		}
	}

	var child *Node
	replacingRef := childIdx < len(items) && items[childIdx].IsRef()
	if replacingRef {
		var err error
		child, err = repo.Get(items[childIdx].RefHash())
		if err != nil {
			return nil, err
		}
	} else {
		child = New()
	}

	newChild, err := upsertNode(repo, child, key, value)
	if err != nil {
		return nil, err
	}
	newChildHash, err := repo.Put(newChild)
	if err != nil {
		return nil, err
	}

	newItems := make([]Item, 0, len(items)+1)
	switch {
	case childIdx >= len(items):
		newItems = append(newItems, items...)
		newItems = append(newItems, Ref(newChildHash))
	case replacingRef:
		newItems = append(newItems, items[:childIdx]...)
		newItems = append(newItems, Ref(newChildHash))
		newItems = append(newItems, items[childIdx+1:]...)
	default:
		newItems = append(newItems, items[:childIdx]...)
		newItems = append(newItems, Ref(newChildHash))
		newItems = append(newItems, items[childIdx:]...)
	}
	return &Node{items: newItems}, nil
}

// split partitions node's items around splitKey: everything strictly less
// goes left, everything strictly greater goes right. A child reference
// that straddles the split point is itself split recursively so no key
// ends up on the wrong side.
func split(repo *Repo, node *Node, splitKey codec.TreeKey) (codec.Hash, codec.Hash, error) {
	items := node.items

	splitIndex := len(items)
	for i, it := range items {
		if it.IsPayload() && it.key.Compare(splitKey) > 0 {
			splitIndex = i
			break
		}
	}

	refToSplitIdx := -1
	if splitIndex > 0 && items[splitIndex-1].IsRef() {
		refToSplitIdx = splitIndex - 1
	} else if splitIndex == 0 && len(items) > 0 && items[0].IsRef() {
		refToSplitIdx = 0
	}

	limit := splitIndex
	if refToSplitIdx >= 0 {
		limit = refToSplitIdx
	}

	leftItems := make([]Item, 0, limit+1)
	leftItems = append(leftItems, items[:limit]...)
	var rightItems []Item

	if refToSplitIdx >= 0 {
		child, err := repo.Get(items[refToSplitIdx].RefHash())
		if err != nil {
			return codec.Hash{}, codec.Hash{}, err
		}
		lHash, rHash, err := split(repo, child, splitKey)
		if err != nil {
			return codec.Hash{}, codec.Hash{}, err
		}
		leftItems = append(leftItems, Ref(lHash))
		rightItems = append(rightItems, Ref(rHash))
	}

	start := splitIndex
	if refToSplitIdx >= 0 {
		start = refToSplitIdx + 1
	}
	rightItems = append(rightItems, items[start:]...)

	leftHash, err := repo.Put(&Node{items: leftItems})
	if err != nil {
		return codec.Hash{}, codec.Hash{}, err
	}
	rightHash, err := repo.Put(&Node{items: rightItems})
	if err != nil {
		return codec.Hash{}, codec.Hash{}, err
	}
	return leftHash, rightHash, nil
}
