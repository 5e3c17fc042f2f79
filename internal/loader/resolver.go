package loader

import "codtool/internal/codec"

// ModuleResolver adapts a (Loader, Module) pair into the read-only lookups
// a bytecode scanner or call-graph builder needs: internal/his.Resolver and
// internal/callgraph.NameResolver are both satisfied structurally, so
// neither package needs to import loader (or vice versa).
type ModuleResolver struct {
	l *Loader
	m *Module
}

// NewModuleResolver builds a resolver for references inline in m's own
// bytecode. mod_index 0 addresses m itself; any other mod_index is resolved
// through m's imported-module table, per resolveClassID.
func NewModuleResolver(l *Loader, m *Module) *ModuleResolver {
	return &ModuleResolver{l: l, m: m}
}

func (r *ModuleResolver) classByID(modByte, classByte byte) (*Class, bool) {
	h := r.l.classHandle(r.m, codec.ClassID{ModIndex: modByte, ClassIndex: classByte})
	c, err := h.Get()
	if err != nil {
		return nil, false
	}
	return c, true
}

// FieldType resolves a getstatic/putstatic-style reference: memberIndex is
// a position in the referenced class's static field table.
func (r *ModuleResolver) FieldType(modByte, classByte byte, memberIndex int64) (*codec.TypeToken, bool) {
	c, ok := r.classByID(modByte, classByte)
	if !ok || memberIndex < 0 || int(memberIndex) >= len(c.StaticFields) {
		return nil, false
	}
	f := c.StaticFields[memberIndex]
	if f.Type == nil {
		return nil, false
	}
	return f.Type, true
}

// FieldTypeByOffset resolves a getfield/putfield-style access. The
// receiver's resolved class name is looked up across every module this
// loader has seen so far (a TypeToken only carries a class name once
// resolved, not the module that declared it).
func (r *ModuleResolver) FieldTypeByOffset(receiver *codec.TypeToken, offset int64) (string, *codec.TypeToken, bool) {
	if receiver == nil || receiver.Resolved == nil {
		return "", nil, false
	}
	c, ok := r.l.FindClassByName(receiver.Resolved.Name)
	if !ok {
		return "", nil, false
	}
	f, ok := c.FieldByOffset(int(offset))
	if !ok || f.Type == nil {
		return "", nil, false
	}
	return f.Name, f.Type, true
}

// VirtualSignature resolves an invokevirtual(_short) target through the
// receiver's own class's VFT, by vtable slot index.
func (r *ModuleResolver) VirtualSignature(receiver *codec.TypeToken, vftIndex int64) (string, codec.TypeList, *codec.TypeToken, bool) {
	if receiver == nil || receiver.Resolved == nil {
		return "", nil, nil, false
	}
	c, ok := r.l.FindClassByName(receiver.Resolved.Name)
	if !ok {
		return "", nil, nil, false
	}
	routine, ok := c.VFTByIndex(int(vftIndex))
	if !ok {
		return "", nil, nil, false
	}
	return routine.Name, routine.ParamTypes, routine.ReturnType, true
}

// RoutineSignature resolves an invokestatic/invokespecial/invokenonvirtual/
// jumpspecial-style reference: memberIndex addresses the referenced class's
// combined routine table (see Class.Routines).
func (r *ModuleResolver) RoutineSignature(modByte, classByte byte, memberIndex int64) (codec.TypeList, *codec.TypeToken, bool) {
	routine, ok := r.routineByID(modByte, classByte, memberIndex)
	if !ok {
		return nil, nil, false
	}
	return routine.ParamTypes, routine.ReturnType, true
}

// RoutineName resolves the same reference shape as RoutineSignature to a
// "Class.method" display name, satisfying internal/callgraph.NameResolver.
func (r *ModuleResolver) RoutineName(modByte, classByte byte, memberIdx int64) (string, bool) {
	c, ok := r.classByID(modByte, classByte)
	if !ok {
		return "", false
	}
	routine, ok := r.routineByID(modByte, classByte, memberIdx)
	if !ok {
		return "", false
	}
	return c.Name + "." + routine.Name, true
}

func (r *ModuleResolver) routineByID(modByte, classByte byte, memberIndex int64) (*Routine, bool) {
	c, ok := r.classByID(modByte, classByte)
	if !ok || memberIndex < 0 || int(memberIndex) >= len(c.Routines) {
		return nil, false
	}
	return c.Routines[memberIndex], true
}

// ClassType resolves a classref operand (new, checkcast, instanceof) to the
// object type it names.
func (r *ModuleResolver) ClassType(modByte, classByte byte) (*codec.TypeToken, bool) {
	c, ok := r.classByID(modByte, classByte)
	if !ok {
		return nil, false
	}
	return &codec.TypeToken{Code: codec.CodeClass7, IsObject: true, Resolved: &codec.ResolvedClass{Name: c.Name}}, true
}
