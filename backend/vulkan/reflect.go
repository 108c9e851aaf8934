package vulkan

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/wave-engine/wave/shader"
)

// SPIR-V opcodes, decorations and storage classes read by reflectPushBlock.
const (
	opName           = 5
	opMemberName     = 6
	opTypeInt        = 21
	opTypeFloat      = 22
	opTypeVector     = 23
	opTypeMatrix     = 24
	opTypeArray      = 28
	opTypeStruct     = 30
	opTypePointer    = 32
	opConstant       = 43
	opVariable       = 59
	opDecorate       = 71
	opMemberDecorate = 72

	decorArrayStride  = 6
	decorMatrixStride = 7
	decorOffset       = 35

	storagePushConstant = 9
)

// pushLayout is the push-constant block declared by the stages of a program.
type pushLayout struct {
	slots  map[string]pushSlot
	size   int
	stages gputypes.ShaderStage
}

// lookup returns the slot of a block member. Members of a named block
// instance are also found as "instance.member".
func (l *pushLayout) lookup(name string) (pushSlot, bool) {
	slot, ok := l.slots[name]
	return slot, ok
}

// merge adds the block of one stage. Stages sharing a member must agree on
// its offset and kind.
func (l *pushLayout) merge(kind shader.StageKind, block *pushBlock) error {
	if block == nil {
		return nil
	}
	if l.slots == nil {
		l.slots = make(map[string]pushSlot)
	}
	for name, slot := range block.slots {
		if have, ok := l.slots[name]; ok && have != slot {
			return fmt.Errorf("%w: %s stage places push constant %q at %d, other stages at %d",
				shader.ErrProgramCreation, kind, name, slot.offset, have.offset)
		}
		l.slots[name] = slot
	}
	l.size = max(l.size, block.size)
	if flag, ok := kind.GPUStage(); ok {
		l.stages |= flag
	}
	return nil
}

// pushBlock is the push-constant block of one SPIR-V module.
type pushBlock struct {
	slots map[string]pushSlot
	size  int
}

// spirvType is what reflection keeps of a type declaration.
type spirvType struct {
	op      uint32
	width   uint32 // int and float
	signed  bool
	elem    uint32 // vector component, matrix column, array element
	count   uint32 // vector components, matrix columns, array length id
	members []uint32
}

type memberKey struct {
	id, index uint32
}

// reflectPushBlock reads the push-constant block declared by a SPIR-V
// module: the member names with their Offset decorations and kinds. It
// returns nil when the module declares none.
func reflectPushBlock(words []uint32) (*pushBlock, error) {
	if len(words) < 5 || words[0] != shader.SpirVMagic {
		return nil, fmt.Errorf("%w: not a SPIR-V module", shader.ErrShaderBinary)
	}
	var (
		names       = make(map[uint32]string)
		memberNames = make(map[memberKey]string)
		offsets     = make(map[memberKey]uint32)
		matStrides  = make(map[memberKey]uint32)
		arrStrides  = make(map[uint32]uint32)
		types       = make(map[uint32]*spirvType)
		constants   = make(map[uint32]uint32)
		pointers    = make(map[uint32]uint32)
		blockVar    uint32
		blockPtr    uint32
	)
	for i := 5; i < len(words); {
		count := int(words[i] >> 16)
		op := words[i] & 0xffff
		if count == 0 || i+count > len(words) {
			return nil, fmt.Errorf("%w: truncated SPIR-V instruction at word %d", shader.ErrShaderBinary, i)
		}
		args := words[i+1 : i+count]
		i += count

		switch op {
		case opName:
			if len(args) >= 1 {
				names[args[0]] = literalString(args[1:])
			}
		case opMemberName:
			if len(args) >= 2 {
				memberNames[memberKey{args[0], args[1]}] = literalString(args[2:])
			}
		case opDecorate:
			if len(args) >= 3 && args[1] == decorArrayStride {
				arrStrides[args[0]] = args[2]
			}
		case opMemberDecorate:
			if len(args) < 4 {
				continue
			}
			key := memberKey{args[0], args[1]}
			switch args[2] {
			case decorOffset:
				offsets[key] = args[3]
			case decorMatrixStride:
				matStrides[key] = args[3]
			}
		case opTypeInt:
			if len(args) >= 3 {
				types[args[0]] = &spirvType{op: op, width: args[1], signed: args[2] == 1}
			}
		case opTypeFloat:
			if len(args) >= 2 {
				types[args[0]] = &spirvType{op: op, width: args[1]}
			}
		case opTypeVector, opTypeMatrix, opTypeArray:
			if len(args) >= 3 {
				types[args[0]] = &spirvType{op: op, elem: args[1], count: args[2]}
			}
		case opTypeStruct:
			if len(args) >= 1 {
				types[args[0]] = &spirvType{op: op, members: append([]uint32(nil), args[1:]...)}
			}
		case opTypePointer:
			if len(args) >= 3 {
				pointers[args[0]] = args[2]
			}
		case opConstant:
			if len(args) >= 3 {
				constants[args[1]] = args[2]
			}
		case opVariable:
			if len(args) >= 3 && args[2] == storagePushConstant {
				blockPtr, blockVar = args[0], args[1]
			}
		}
	}
	if blockVar == 0 {
		return nil, nil
	}

	r := &reflector{types: types, constants: constants, arrStrides: arrStrides, offsets: offsets, matStrides: matStrides}
	structID := pointers[blockPtr]
	st := types[structID]
	if st == nil || st.op != opTypeStruct {
		return nil, fmt.Errorf("%w: push constant block is not a struct", shader.ErrShaderBinary)
	}
	block := &pushBlock{slots: make(map[string]pushSlot, len(st.members))}
	instance := names[blockVar]
	for idx, member := range st.members {
		key := memberKey{structID, uint32(idx)}
		name, ok := memberNames[key]
		if !ok || name == "" {
			continue
		}
		offset, ok := offsets[key]
		if !ok {
			return nil, fmt.Errorf("%w: push constant %q has no offset", shader.ErrShaderBinary, name)
		}
		size, err := r.size(member, matStrides[key])
		if err != nil {
			return nil, err
		}
		slot := pushSlot{offset: int(offset), kind: r.kind(member)}
		block.slots[name] = slot
		if instance != "" {
			block.slots[instance+"."+name] = slot
		}
		block.size = max(block.size, int(offset)+size)
	}
	return block, nil
}

type reflector struct {
	types      map[uint32]*spirvType
	constants  map[uint32]uint32
	arrStrides map[uint32]uint32
	offsets    map[memberKey]uint32
	matStrides map[memberKey]uint32
}

// kind maps a member type to the uniform kind that can be uploaded into it.
// Types no Uniform can hold map to UniformInvalid.
func (r *reflector) kind(id uint32) shader.UniformKind {
	t := r.types[id]
	if t == nil {
		return shader.UniformInvalid
	}
	switch t.op {
	case opTypeFloat:
		switch t.width {
		case 32:
			return shader.UniformFloat
		case 64:
			return shader.UniformDouble
		}
	case opTypeInt:
		if t.width != 32 {
			return shader.UniformInvalid
		}
		if t.signed {
			return shader.UniformInt
		}
		return shader.UniformUint
	case opTypeMatrix:
		col := r.types[t.elem]
		if t.count == 4 && col != nil && col.count == 4 && r.kind(col.elem) == shader.UniformFloat {
			return shader.UniformMat4
		}
	}
	return shader.UniformInvalid
}

// size returns the bytes a member of type id occupies in the block.
func (r *reflector) size(id, matStride uint32) (int, error) {
	t := r.types[id]
	if t == nil {
		return 0, fmt.Errorf("%w: push constant member of unknown type %d", shader.ErrShaderBinary, id)
	}
	switch t.op {
	case opTypeInt, opTypeFloat:
		return int(t.width / 8), nil
	case opTypeVector:
		comp, err := r.size(t.elem, 0)
		return comp * int(t.count), err
	case opTypeMatrix:
		if matStride == 0 {
			col, err := r.size(t.elem, 0)
			return col * int(t.count), err
		}
		return int(matStride * t.count), nil
	case opTypeArray:
		stride, ok := r.arrStrides[id]
		if !ok {
			return 0, fmt.Errorf("%w: push constant array %d has no stride", shader.ErrShaderBinary, id)
		}
		return int(stride * r.constants[t.count]), nil
	case opTypeStruct:
		size := 0
		for idx, m := range t.members {
			key := memberKey{id, uint32(idx)}
			s, err := r.size(m, r.matStrides[key])
			if err != nil {
				return 0, err
			}
			size = max(size, int(r.offsets[key])+s)
		}
		return size, nil
	}
	return 0, fmt.Errorf("%w: unsupported push constant member type", shader.ErrShaderBinary)
}

// literalString decodes a nul-terminated SPIR-V literal string.
func literalString(words []uint32) string {
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return string(b)
			}
			b = append(b, c)
		}
	}
	return string(b)
}
