// Package leb128 implements the LEB128 variable-length integer encoding used
// throughout the WebAssembly binary format: unsigned and signed variants,
// each parameterized by a maximum byte count and a logical bit width.
//
// See https://www.w3.org/TR/2019/REC-wasm-core-1-20191205/#integers
package leb128

import (
	"errors"
	"io"
)

// ErrOverflow is returned when a decoded value does not fit the requested
// bit width, when a continuation byte contributes bits outside that width,
// or when more than the allotted number of continuation bytes is read.
var ErrOverflow = errors.New("leb128: integer representation too long or value out of range")

// ErrUnterminated is returned when the input is exhausted while the most
// recently read byte still has its continuation bit (0x80) set.
var ErrUnterminated = errors.New("leb128: unexpected EOF before terminating byte")

// DecodeUint32 reads a u32-bounded unsigned LEB128 value, consuming at most
// 5 bytes.
func DecodeUint32(r io.ByteReader) (uint32, uint64, error) {
	v, n, err := decodeUnsigned(r, 5, 32)
	return uint32(v), n, err
}

// DecodeUint64 reads a u64-bounded unsigned LEB128 value, consuming at most
// 10 bytes.
func DecodeUint64(r io.ByteReader) (uint64, uint64, error) {
	return decodeUnsigned(r, 10, 64)
}

// DecodeInt32 reads an i32-bounded signed LEB128 value, consuming at most 5
// bytes.
func DecodeInt32(r io.ByteReader) (int32, uint64, error) {
	v, n, err := decodeSigned(r, 5, 32)
	return int32(v), n, err
}

// DecodeInt64 reads an i64-bounded signed LEB128 value, consuming at most 10
// bytes.
func DecodeInt64(r io.ByteReader) (int64, uint64, error) {
	return decodeSigned(r, 10, 64)
}

// decodeUnsigned accumulates the low 7 bits of each byte, least-significant
// byte first, stopping at the first byte whose continuation bit (0x80) is
// clear. bitWidth bounds which bits of the final result may be non-zero;
// maxBytes bounds how many continuation bytes are tolerated.
func decodeUnsigned(r io.ByteReader, maxBytes int, bitWidth uint) (uint64, uint64, error) {
	var result uint64
	var n uint64
	for i := 0; i < maxBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return 0, 0, ErrUnterminated
			}
			return 0, 0, err
		}
		n++

		shift := uint(i) * 7
		low7 := uint64(b & 0x7f)
		if shift+7 > bitWidth {
			if err := checkUnusedBitsZero(low7, shift, bitWidth); err != nil {
				return 0, 0, err
			}
		}
		result |= low7 << shift

		if b&0x80 == 0 {
			return result, n, nil
		}
	}
	return 0, 0, ErrOverflow
}

// decodeSigned is the two's-complement counterpart of decodeUnsigned: once
// the terminating byte is found, the result is sign-extended above the final
// shift when that byte's sign bit (0x40) is set, then range-checked against
// the signed window for bitWidth.
func decodeSigned(r io.ByteReader, maxBytes int, bitWidth uint) (int64, uint64, error) {
	var result int64
	var n uint64
	var shift uint
	for i := 0; i < maxBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return 0, 0, ErrUnterminated
			}
			return 0, 0, err
		}
		n++

		result |= int64(b&0x7f) << shift
		shift += 7

		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}
			if bitWidth < 64 {
				min := int64(-1) << (bitWidth - 1)
				max := int64(1) << (bitWidth - 1)
				if result < min || result >= max {
					return 0, 0, ErrOverflow
				}
			}
			return result, n, nil
		}
	}
	return 0, 0, ErrOverflow
}

// checkUnusedBitsZero verifies that the bits of low7 which fall beyond
// bitWidth (given this byte starts at position shift) are all zero.
func checkUnusedBitsZero(low7 uint64, shift, bitWidth uint) error {
	var allowed uint
	if shift < bitWidth {
		allowed = bitWidth - shift
	}
	var mask uint64 = 0x7f
	if allowed < 7 {
		mask = uint64(1)<<allowed - 1
	}
	if low7&^mask != 0 {
		return ErrOverflow
	}
	return nil
}

// EncodeUint32 returns the canonical unsigned LEB128 encoding of v.
func EncodeUint32(v uint32) []byte {
	return encodeUnsigned(uint64(v))
}

// EncodeUint64 returns the canonical unsigned LEB128 encoding of v.
func EncodeUint64(v uint64) []byte {
	return encodeUnsigned(v)
}

func encodeUnsigned(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			return out
		}
	}
}

// EncodeInt32 returns the canonical signed LEB128 encoding of v.
func EncodeInt32(v int32) []byte {
	return encodeSignedValue(int64(v))
}

// EncodeInt64 returns the canonical signed LEB128 encoding of v.
func EncodeInt64(v int64) []byte {
	return encodeSignedValue(v)
}

func encodeSignedValue(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}
