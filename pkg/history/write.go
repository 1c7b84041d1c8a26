package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// WriteText writes the store in the text format, ordered by child id.
// The output can be re-read with [ReadText].
func WriteText(s *Store, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, r := range s.Sorted() {
		if _, err := fmt.Fprintln(bw, r.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteJSON writes the store in the JSON format, ordered by child id.
func WriteJSON(s *Store, w io.Writer) error {
	doc := document{Births: make([]birth, 0, s.Len())}
	for _, r := range s.Sorted() {
		b := birth{Child: r.ChildID, Epoch: r.Epoch}
		if !r.IsRoot() {
			b.Parents = make([]*uint64, 2)
			for i, p := range r.Parents {
				if p != NoParent {
					v := p
					b.Parents[i] = &v
				}
			}
		}
		doc.Births = append(doc.Births, b)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
