// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/creachadair/jnode"
	"github.com/valyala/bytebufferpool"
)

// dump writes a listing of the tree rooted at root to w, one node per line,
// with children indented beneath their parent.
func dump(w io.Writer, root *jnode.Node) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := dumpNode(buf, root, 0); err != nil {
		return err
	}
	_, err := w.Write(buf.B)
	return err
}

func dumpNode(buf *bytebufferpool.ByteBuffer, n *jnode.Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)

	switch t := n.Type(); t {
	case jnode.ObjectNode, jnode.ArrayNode:
		buf.WriteString(t.String())
		buf.WriteByte('\n')

		var key *jnode.String
		var val *jnode.Node
		it := n.Iterator()
		for {
			err := it.Next(&key, &val)
			if errors.Is(err, jnode.ErrNoMoreElements) {
				return nil
			} else if err != nil {
				return err
			}
			if key != nil {
				fmt.Fprintf(buf, "%s  key: %s\n", indent, key)
			}
			if err := dumpNode(buf, val, depth+1); err != nil {
				return err
			}
		}

	case jnode.StringNode:
		fmt.Fprintf(buf, "%s => %s\n", t, n.GetString())
	case jnode.IntegerNode:
		fmt.Fprintf(buf, "%s => %d\n", t, n.Integer())
	case jnode.DoubleNode:
		fmt.Fprintf(buf, "%s => %s\n", t, strconv.FormatFloat(n.Double(), 'g', -1, 64))
	case jnode.BooleanNode:
		fmt.Fprintf(buf, "%s => %v\n", t, n.Bool())
	default:
		buf.WriteString(t.String())
		buf.WriteByte('\n')
	}
	return nil
}
