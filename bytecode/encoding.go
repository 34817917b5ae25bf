package bytecode

import (
	"encoding/binary"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

// Magic and version constants for the `ZNBC` file format.
var Magic = [4]byte{'Z', 'N', 'B', 'C'}

const Version = 1

// Encode writes p to w in its binary format: a `ZNBC` header, the
// function table, the input descriptor, then the code stream — all
// little-endian.
func Encode(w io.Writer, p *Program) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return errors.Wrap(err, "bytecode: write magic")
	}
	if err := writeByte(w, Version); err != nil {
		return errors.Wrap(err, "bytecode: write version")
	}
	if err := writeByte(w, 0); err != nil { // flags, reserved
		return errors.Wrap(err, "bytecode: write flags")
	}

	if err := writeU32(w, uint32(len(p.Functions))); err != nil {
		return errors.Wrap(err, "bytecode: write function count")
	}
	for _, fn := range p.Functions {
		if err := writeU32(w, uint32(len(fn.Name))); err != nil {
			return errors.Wrap(err, "bytecode: write function name length")
		}
		if _, err := io.WriteString(w, fn.Name); err != nil {
			return errors.Wrap(err, "bytecode: write function name")
		}
		if err := writeU32(w, fn.Address); err != nil {
			return errors.Wrap(err, "bytecode: write function address")
		}
		if err := writeU32(w, fn.InputSize); err != nil {
			return errors.Wrap(err, "bytecode: write function input size")
		}
	}

	if err := writeU32(w, uint32(len(p.InputDesc))); err != nil {
		return errors.Wrap(err, "bytecode: write input descriptor length")
	}
	if _, err := w.Write(p.InputDesc); err != nil {
		return errors.Wrap(err, "bytecode: write input descriptor")
	}

	if err := writeU32(w, uint32(len(p.Code))); err != nil {
		return errors.Wrap(err, "bytecode: write instruction count")
	}
	for _, ins := range p.Code {
		if err := encodeInstruction(w, ins); err != nil {
			return errors.Wrapf(err, "bytecode: encode instruction %s", ins.Op)
		}
	}
	return nil
}

func encodeInstruction(w io.Writer, ins Instruction) error {
	if err := writeByte(w, byte(ins.Op)); err != nil {
		return err
	}
	switch ins.Op {
	case OpPush:
		if err := writeBigInt(w, ins.Value); err != nil {
			return err
		}
		return writeType(w, ins.ValueType)
	case OpPop, OpLoopBegin:
		return writeU32(w, ins.Count)
	case OpLoad, OpStore, OpLoadPushArray:
		if err := writeU32(w, ins.Addr); err != nil {
			return err
		}
		return writeU32(w, ins.Size)
	case OpCast:
		if err := writeByte(w, byte(ins.ToTag)); err != nil {
			return err
		}
		if err := writeBool(w, ins.Signed); err != nil {
			return err
		}
		return writeU16(w, ins.Width)
	case OpCall:
		if err := writeU32(w, ins.Entry); err != nil {
			return err
		}
		return writeU32(w, ins.InputSize)
	case OpReturn:
		return writeU32(w, ins.OutputSize)
	case OpSlice:
		if err := writeU32(w, ins.TotalLen); err != nil {
			return err
		}
		if err := writeU32(w, ins.SliceLen); err != nil {
			return err
		}
		return writeU32(w, ins.Offset)
	default:
		return nil // Add, Sub, ..., If, Else, EndIf, LoopEnd, Exit: no operands
	}
}

// Decode reads a Program previously written by Encode, validating the
// magic header and surfacing any truncation or malformed operand as a
// wrapped error.
func Decode(r io.Reader) (*Program, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(err, "bytecode: read magic")
	}
	if magic != Magic {
		return nil, errors.Errorf("bytecode: bad magic %q, want %q", magic, Magic)
	}
	version, err := readByte(r)
	if err != nil {
		return nil, errors.Wrap(err, "bytecode: read version")
	}
	if version != Version {
		return nil, errors.Errorf("bytecode: unsupported version %d", version)
	}
	if _, err := readByte(r); err != nil { // flags
		return nil, errors.Wrap(err, "bytecode: read flags")
	}

	fnCount, err := readU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "bytecode: read function count")
	}
	p := &Program{}
	for i := uint32(0); i < fnCount; i++ {
		nameLen, err := readU32(r)
		if err != nil {
			return nil, errors.Wrap(err, "bytecode: read function name length")
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, errors.Wrap(err, "bytecode: read function name")
		}
		addr, err := readU32(r)
		if err != nil {
			return nil, errors.Wrap(err, "bytecode: read function address")
		}
		inputSize, err := readU32(r)
		if err != nil {
			return nil, errors.Wrap(err, "bytecode: read function input size")
		}
		p.Functions = append(p.Functions, FunctionEntry{Name: string(name), Address: addr, InputSize: inputSize})
	}

	descLen, err := readU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "bytecode: read input descriptor length")
	}
	desc := make([]byte, descLen)
	if _, err := io.ReadFull(r, desc); err != nil {
		return nil, errors.Wrap(err, "bytecode: read input descriptor")
	}
	p.InputDesc = desc

	codeCount, err := readU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "bytecode: read instruction count")
	}
	for i := uint32(0); i < codeCount; i++ {
		ins, err := decodeInstruction(r)
		if err != nil {
			return nil, errors.Wrapf(err, "bytecode: decode instruction %d", i)
		}
		p.Code = append(p.Code, ins)
	}
	return p, nil
}

func decodeInstruction(r io.Reader) (Instruction, error) {
	opByte, err := readByte(r)
	if err != nil {
		return Instruction{}, err
	}
	op := Opcode(opByte)
	if _, ok := opcodeNames[op]; !ok {
		return Instruction{}, errors.Errorf("bytecode: invalid opcode byte %d", opByte)
	}
	ins := Instruction{Op: op}

	switch op {
	case OpPush:
		v, err := readBigInt(r)
		if err != nil {
			return ins, err
		}
		ins.Value = v
		typ, err := readType(r)
		if err != nil {
			return ins, err
		}
		ins.ValueType = typ
	case OpPop, OpLoopBegin:
		ins.Count, err = readU32(r)
	case OpLoad, OpStore, OpLoadPushArray:
		if ins.Addr, err = readU32(r); err != nil {
			return ins, err
		}
		ins.Size, err = readU32(r)
	case OpCast:
		tagByte, terr := readByte(r)
		if terr != nil {
			return ins, terr
		}
		ins.ToTag = TypeTag(tagByte)
		if ins.Signed, err = readBool(r); err != nil {
			return ins, err
		}
		ins.Width, err = readU16(r)
	case OpCall:
		if ins.Entry, err = readU32(r); err != nil {
			return ins, err
		}
		ins.InputSize, err = readU32(r)
	case OpReturn:
		ins.OutputSize, err = readU32(r)
	case OpSlice:
		if ins.TotalLen, err = readU32(r); err != nil {
			return ins, err
		}
		if ins.SliceLen, err = readU32(r); err != nil {
			return ins, err
		}
		ins.Offset, err = readU32(r)
	}
	return ins, err
}

// ---- primitive encode/decode helpers ----

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func writeBool(w io.Writer, b bool) error {
	if b {
		return writeByte(w, 1)
	}
	return writeByte(w, 0)
}

func readBool(r io.Reader) (bool, error) {
	b, err := readByte(r)
	return b != 0, err
}

func writeU16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeType(w io.Writer, t Type) error {
	if err := writeByte(w, byte(t.Tag)); err != nil {
		return err
	}
	if t.Tag == TagUnsigned || t.Tag == TagSigned {
		return writeU16(w, t.Width)
	}
	return nil
}

func readType(r io.Reader) (Type, error) {
	tagByte, err := readByte(r)
	if err != nil {
		return Type{}, err
	}
	t := Type{Tag: TypeTag(tagByte)}
	if t.Tag == TagUnsigned || t.Tag == TagSigned {
		t.Width, err = readU16(r)
	}
	return t, err
}

// writeBigInt encodes v as a varint-length-prefixed two's-complement
// byte string, so literals up to and past 248 bits round trip
// exactly.
func writeBigInt(w io.Writer, v *big.Int) error {
	if v == nil {
		v = big.NewInt(0)
	}
	raw := twosComplementBytes(v)
	length := uint64(len(raw))
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], length)
	if _, err := w.Write(buf[:n]); err != nil {
		return err
	}
	_, err := w.Write(raw)
	return err
}

func readBigInt(r io.Reader) (*big.Int, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufByteReader{r}
	}
	length, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, err
	}
	return fromTwosComplementBytes(raw), nil
}

// bufByteReader adapts an io.Reader without ReadByte to io.ByteReader
// for binary.ReadUvarint, reading one byte at a time.
type bufByteReader struct{ io.Reader }

func (b bufByteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.Reader, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// twosComplementBytes renders v as a big-endian two's complement byte
// string: minimal for v >= 0; a negative v takes one byte more than
// minimal when v is exactly -2^(8k-1) (e.g. -128 takes two bytes).
func twosComplementBytes(v *big.Int) []byte {
	if v.Sign() >= 0 {
		b := v.Bytes()
		if len(b) == 0 {
			return []byte{0}
		}
		if b[0]&0x80 != 0 {
			return append([]byte{0}, b...)
		}
		return b
	}
	// Negative: two's complement over ceil((bitlen(-v)+1)/8) bytes,
	// enough room for the magnitude plus a sign bit.
	mag := new(big.Int).Neg(v)
	nbytes := (mag.BitLen() + 8) / 8
	if nbytes == 0 {
		nbytes = 1
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(nbytes*8))
	twos := new(big.Int).Add(mod, v)
	b := twos.Bytes()
	for len(b) < nbytes {
		b = append([]byte{0}, b...)
	}
	return b
}

func fromTwosComplementBytes(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	v := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		v.Sub(v, mod)
	}
	return v
}
