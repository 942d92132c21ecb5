package store

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/tudgoi/pika/mst"
	"github.com/tudgoi/pika/pt"
	"github.com/tudgoi/pika/storedb"
)

const (
	colorRef   = "\x1b[36m"
	colorLeaf  = "\x1b[32m"
	colorReset = "\x1b[0m"
)

// PrintRef writes a human-readable, indented dump of the tree named by
// refName to w. Output is colorized only when w is a terminal.
func (s *Store) PrintRef(w io.Writer, refName string) error {
	rtx, err := s.db.BeginRead()
	if err != nil {
		return &TransactionError{Cause: err}
	}
	defer rtx.Rollback()

	refs, err := rtx.OpenRefs()
	if err != nil {
		if errors.Is(err, storedb.ErrTableDoesNotExist) {
			fmt.Fprintf(w, "could not find ref: %s\n", refName)
			return nil
		}
		return &StorageError{Cause: err}
	}
	h, ok, err := refs.Get(refName)
	if err != nil {
		return &StorageError{Cause: err}
	}
	if !ok {
		fmt.Fprintf(w, "could not find ref: %s\n", refName)
		return nil
	}

	repoTable, err := rtx.OpenRepo()
	if err != nil {
		return &StorageError{Cause: err}
	}

	color := supportsColor(w)
	switch s.engine {
	case EngineMst:
		repo := mst.NewRepo(repoTable, defaultCacheSize)
		root, err := repo.Get(h)
		if err != nil {
			return err
		}
		printMstNode(w, repo, root, "", color)
	case EnginePt:
		repo := pt.NewRepo(repoTable, defaultCacheSize)
		root, err := repo.Get(h)
		if err != nil {
			return err
		}
		printPtNode(w, repo, root, "", color)
	default:
		return ErrNotInitialized
	}
	return nil
}

func supportsColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func printMstNode(w io.Writer, repo *mst.Repo, node *mst.Node, indent string, color bool) {
	for _, it := range node.Items() {
		printLine(w, indent, it.String(), it.IsPayload(), color)
		if it.IsRef() {
			child, err := repo.Get(it.RefHash())
			if err != nil {
				fmt.Fprintf(w, "%s  <%v>\n", indent, err)
				continue
			}
			printMstNode(w, repo, child, indent+"  ", color)
		}
	}
}

func printPtNode(w io.Writer, repo *pt.Repo, node *pt.Node, indent string, color bool) {
	for _, it := range node.Items() {
		printLine(w, indent, it.String(), it.IsPayload(), color)
		if it.IsRef() {
			child, err := repo.Get(it.RefHash())
			if err != nil {
				fmt.Fprintf(w, "%s  <%v>\n", indent, err)
				continue
			}
			printPtNode(w, repo, child, indent+"  ", color)
		}
	}
}

func printLine(w io.Writer, indent, text string, isLeaf, color bool) {
	if !color {
		fmt.Fprintf(w, "%s%s\n", indent, text)
		return
	}
	c := colorRef
	if isLeaf {
		c = colorLeaf
	}
	fmt.Fprintf(w, "%s%s%s%s\n", indent, c, text, colorReset)
}
