// Package binary decodes a WebAssembly binary module into the structured
// form defined by package wasm. Decoding is purely structural: it does not
// typecheck instruction bodies or resolve cross-section indices, both of
// which are the job of wasm.Validate once a Module has been produced here.
package binary

import (
	"errors"
	"io"
	"unicode/utf8"

	"github.com/gowasm/wasmcheck/leb128"
	"github.com/gowasm/wasmcheck/wasm"
)

var (
	magic   = [4]byte{0x00, 'a', 's', 'm'}
	version = [4]byte{0x01, 0x00, 0x00, 0x00}
)

// reader walks a borrowed byte slice left to right, handing out sub-slices
// of it rather than copies (readN, readExpression); a decoded Module keeps
// those sub-slices as borrowed views of the input. It implements
// io.ByteReader so the leb128 decoders can be used directly against it.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader { return &reader{data: data} }

func (r *reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// readN returns the next n bytes as a sub-slice of the underlying buffer,
// without copying.
func (r *reader) readN(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) remaining() int { return len(r.data) - r.pos }

func (r *reader) readVarU32() (uint32, error) {
	v, _, err := leb128.DecodeUint32(r)
	return v, err
}

func (r *reader) readVarU64() (uint64, error) {
	v, _, err := leb128.DecodeUint64(r)
	return v, err
}

func (r *reader) readVarI32() (int32, error) {
	v, _, err := leb128.DecodeInt32(r)
	return v, err
}

func (r *reader) readVarI64() (int64, error) {
	v, _, err := leb128.DecodeInt64(r)
	return v, err
}

// readName decodes a length-prefixed, UTF-8-validated string.
func (r *reader) readName() (string, error) {
	n, err := r.readVarU32()
	if err != nil {
		return "", err
	}
	b, err := r.readN(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", wasm.ErrInvalidUTF8
	}
	return string(b), nil
}

// readExpression scans forward to the first end (0x0b) opcode, which
// terminates every RawExpression this package ever decodes since the
// supported instruction set has no nested control-flow blocks. The end
// opcode is consumed but excluded from the returned span.
func (r *reader) readExpression() (wasm.RawExpression, error) {
	start := r.pos
	for {
		b, err := r.ReadByte()
		if err != nil {
			return wasm.RawExpression{}, io.ErrUnexpectedEOF
		}
		if b == wasm.OpcodeEnd {
			return wasm.RawExpression{Bytes: r.data[start : r.pos-1]}, nil
		}
	}
}

// DecodeModule parses the full contents of data as a WebAssembly binary
// module: the 8-byte header, then a sequence of sections running to the
// end of the buffer.
func DecodeModule(data []byte) (*wasm.Module, error) {
	r := newReader(data)

	hdr, err := r.readN(4)
	if err != nil || [4]byte(hdr[:4]) != magic {
		return nil, &wasm.ParseError{Offset: 0, Err: wasm.ErrMagicMismatch}
	}
	ver, err := r.readN(4)
	if err != nil || [4]byte(ver[:4]) != version {
		return nil, &wasm.ParseError{Offset: 4, Err: wasm.ErrVersionMismatch}
	}

	m := &wasm.Module{}
	lastNonCustomID := -1

	for r.remaining() > 0 {
		sectionStart := r.pos
		id, err := r.ReadByte()
		if err != nil {
			return nil, &wasm.ParseError{Offset: sectionStart, Err: err}
		}
		size, err := r.readVarU32()
		if err != nil {
			return nil, &wasm.ParseError{Offset: sectionStart, Err: err}
		}
		payload, err := r.readN(int(size))
		if err != nil {
			return nil, &wasm.ParseError{Offset: sectionStart, Err: wasm.ErrSectionTruncated}
		}

		if id != wasm.SectionIDCustom {
			if int(id) <= lastNonCustomID {
				return nil, &wasm.ParseError{Offset: sectionStart, Err: wasm.ErrSectionOutOfOrder}
			}
			lastNonCustomID = int(id)
		}

		pr := newReader(payload)
		if err := decodeSection(m, id, pr); err != nil {
			return nil, &wasm.ParseError{Offset: sectionStart, Err: err}
		}
		if pr.remaining() != 0 {
			return nil, &wasm.ParseError{Offset: sectionStart, Err: wasm.ErrSectionOverread}
		}
	}

	return m, nil
}

func decodeSection(m *wasm.Module, id wasm.SectionID, r *reader) error {
	switch id {
	case wasm.SectionIDCustom:
		return decodeCustomSection(m, r)
	case wasm.SectionIDType:
		return decodeTypeSection(m, r)
	case wasm.SectionIDImport:
		return decodeImportSection(m, r)
	case wasm.SectionIDFunction:
		return decodeFunctionSection(m, r)
	case wasm.SectionIDTable:
		return decodeTableSection(m, r)
	case wasm.SectionIDMemory:
		return decodeMemorySection(m, r)
	case wasm.SectionIDGlobal:
		return decodeGlobalSection(m, r)
	case wasm.SectionIDExport:
		return decodeExportSection(m, r)
	case wasm.SectionIDStart:
		return decodeStartSection(m, r)
	case wasm.SectionIDElement:
		return decodeElementSection(m, r)
	case wasm.SectionIDCode:
		return decodeCodeSection(m, r)
	case wasm.SectionIDData:
		return decodeDataSection(m, r)
	case wasm.SectionIDDataCount:
		return decodeDataCountSection(m, r)
	default:
		return wasm.ErrUnknownSectionID
	}
}

var errBadDesc = errors.New("wasm: invalid description byte")
