package codfmt

import (
	"fmt"

	"go.mozilla.org/pkcs7"

	"codtool/internal/bytestream"
)

// TrailerItem is one type/length/value record in the module trailer: RIM
// module signing appends PKCS7 signature blobs here alongside other
// type-tagged metadata.
type TrailerItem struct {
	Type   uint16
	Length uint16
	Value  []byte
}

// Trailer is the sequence of TLV records following the data section.
type Trailer struct {
	Items []TrailerItem
}

// TrailerTypeSignature is the well-known trailer item type carrying a
// PKCS7 signature over the preceding header+code+data bytes.
const TrailerTypeSignature uint16 = 0

func parseTrailerItem(r *bytestream.Reader) (TrailerItem, error) {
	var t TrailerItem
	var err error
	if t.Type, err = r.U16LE(); err != nil {
		return t, fmt.Errorf("trailer item type: %w", err)
	}
	if t.Length, err = r.U16LE(); err != nil {
		return t, fmt.Errorf("trailer item length: %w", err)
	}
	if t.Value, err = r.Bytes(int(t.Length)); err != nil {
		return t, fmt.Errorf("trailer item value: %w", err)
	}
	return t, nil
}

// ParseTrailer reads TLV records until the buffer is exhausted.
func ParseTrailer(r *bytestream.Reader) (*Trailer, error) {
	var items []TrailerItem
	for r.Remaining() > 0 {
		item, err := parseTrailerItem(r)
		if err != nil {
			return &Trailer{Items: items}, err
		}
		items = append(items, item)
	}
	return &Trailer{Items: items}, nil
}

// Signatures returns the parsed PKCS7 signature of every trailer item
// tagged as a signature record. Items that fail to parse as PKCS7 are
// skipped; callers that need the parse error should call pkcs7.Parse on
// the raw Value directly.
func (t *Trailer) Signatures() []*pkcs7.PKCS7 {
	var out []*pkcs7.PKCS7
	for _, item := range t.Items {
		if item.Type != TrailerTypeSignature {
			continue
		}
		p7, err := pkcs7.Parse(item.Value)
		if err != nil {
			continue
		}
		out = append(out, p7)
	}
	return out
}
