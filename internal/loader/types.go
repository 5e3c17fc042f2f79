package loader

import (
	"codtool/internal/codec"
	"codtool/internal/codfmt"
)

// Field is a resolved instance or static field.
type Field struct {
	Name    string
	Type    *codec.TypeToken
	Static  bool
	Address uint16 // valid only when Static
}

// Routine is a resolved method: decoded name and JTS signature, backed by
// its raw bytecode definition.
type Routine struct {
	Def        *codfmt.RoutineDef
	Name       string
	ParamTypes codec.TypeList
	ReturnType *codec.TypeToken
}

// Class is a resolved class definition. Superclass and interfaces are lazy
// handles because they may live in a sibling module that hasn't loaded yet.
//
// Routines holds every method the class declares, in virtual, then
// nonvirtual, then static order — the same concatenation codfmt.ParseCodeSection
// uses to read the code section, and the order a static/nonvirtual/special
// invoke's member index addresses directly (virtual methods are never
// invoke-by-index targets; they're only reached through a vtable slot).
type Class struct {
	Module       *Module
	Def          *codfmt.ClassDef
	Name         string // fully-qualified, slash-separated
	Superclass   *Handle[Class]
	Ifaces       []*Handle[Class]
	Fields       []*Field // instance fields, declaration order
	StaticFields []*Field
	Routines     []*Routine
}

// classChain walks from the root superclass down to c itself. A superclass
// that fails to resolve (e.g. an external root class not present in any
// loaded module) truncates the chain there rather than failing outright;
// callers only need the fields declared below that point.
func (c *Class) classChain() []*Class {
	var chain []*Class
	for cur := c; cur != nil; {
		chain = append([]*Class{cur}, chain...)
		if cur.Superclass == nil {
			break
		}
		super, err := cur.Superclass.Get()
		if err != nil || super == nil {
			break
		}
		cur = super
	}
	return chain
}

// FieldByOffset resolves an instance field access by its flattened layout
// offset: position in the root-to-leaf field table built across the
// superclass chain, where a two-slot (long/double) field occupies two
// consecutive offsets. Computed on demand rather than cached at class-build
// time, since the superclass chain may span modules that load after this
// one.
func (c *Class) FieldByOffset(offset int) (*Field, bool) {
	if offset < 0 {
		return nil, false
	}
	pos := 0
	for _, cls := range c.classChain() {
		for _, f := range cls.Fields {
			if f.Type != nil && f.Type.Slots() == 2 {
				if pos == offset {
					return f, true
				}
				pos++
			}
			if pos == offset {
				return f, true
			}
			pos++
		}
	}
	return nil, false
}

// hasSibling reports whether name is one of m's declared siblings — modules
// that share m's class space under a minor-version migration, per the
// data section's sibling table.
func (m *Module) hasSibling(name string) bool {
	ds := m.Raw.DataSection
	for _, sib := range ds.Siblings {
		if n, err := ds.Identifier(sib); err == nil && n == name {
			return true
		}
	}
	return false
}

// classAtIndex returns the idx'th class in this module's own class_defs
// declaration order (a position, not a pool name lookup).
func (m *Module) classAtIndex(idx int) (*Class, bool) {
	ds := m.Raw.DataSection
	if idx < 0 || idx >= len(ds.ClassOffsets) {
		return nil, false
	}
	c, ok := m.classesByOffset[ds.ClassOffsets[idx]]
	return c, ok
}

// virtualRoutines returns c's own declared virtual methods — Routines is
// built virtual, then nonvirtual, then static, in that order, with
// Def.VirtualRoutines giving the virtual count.
func (c *Class) virtualRoutines() []*Routine {
	n := len(c.Def.VirtualRoutines)
	if n > len(c.Routines) {
		n = len(c.Routines)
	}
	return c.Routines[:n]
}

// VFT computes c's virtual function table: walking the superclass chain
// root-to-leaf, each class's declared virtual methods either replace an
// inherited slot with the same name and parameter signature (an override)
// or append a new slot (a new virtual method this class introduces).
func (c *Class) VFT() []*Routine {
	var slots []*Routine
	for _, cls := range c.classChain() {
		for _, r := range cls.virtualRoutines() {
			sig := r.Name + r.ParamTypes.JTS(false)
			replaced := false
			for i, s := range slots {
				if s.Name+s.ParamTypes.JTS(false) == sig {
					slots[i] = r
					replaced = true
					break
				}
			}
			if !replaced {
				slots = append(slots, r)
			}
		}
	}
	return slots
}

// VFTByIndex resolves a vtable slot index against c's computed VFT.
func (c *Class) VFTByIndex(idx int) (*Routine, bool) {
	vft := c.VFT()
	if idx < 0 || idx >= len(vft) {
		return nil, false
	}
	return vft[idx], true
}

// Module is one loaded module container plus the indexes scoped to it.
type Module struct {
	Name    string
	Version string
	Path    string
	Raw     *codfmt.RawModule

	classesByOffset map[uint16]*Class
	classesByName   map[string]*Class
}

func (m *Module) classByOffset(off uint16) (*Class, bool) {
	c, ok := m.classesByOffset[off]
	return c, ok
}

// ClassNames returns every class declared directly in this module, in no
// particular order.
func (m *Module) ClassNames() []string {
	names := make([]string, 0, len(m.classesByName))
	for n := range m.classesByName {
		names = append(names, n)
	}
	return names
}

// Class looks up a class declared directly in this module by its
// fully-qualified, slash-separated name.
func (m *Module) Class(name string) (*Class, bool) {
	c, ok := m.classesByName[name]
	return c, ok
}
