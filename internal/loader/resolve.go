package loader

import (
	"fmt"
	"strconv"
	"strings"

	"codtool/internal/codec"
	"codtool/internal/codfmt"
	"codtool/internal/errkind"
)

// resolveClassID turns a raw (mod_index, class_index) reference, as it
// appears inline in a type token or class def, into a (base module name,
// JTS class token) pair suitable for a cross-module lookup. This follows
// get_class's tie-break order from original_source/trunk/codlib/resolve.py:
//
//  1. (255,255) is the root-superclass sentinel (java.lang.Object's
//     implicit superclass): resolves to no class at all.
//  2. mod_index 0 addresses this module itself: class_index is a position
//     in class_defs, declaration order.
//  3. A module loaded from the heap (section_num != 0) keeps a
//     class-ref-extra map: class_refs entries whose own Extra field equals
//     id are found there directly, bypassing the scan below.
//  4. Otherwise, class_refs is scanned in stride-256 buckets starting at
//     class_index, looking for the entry this (mod, class) byte pair
//     actually names — but only when mod_index selects a real import (not
//     local or the sentinel) and that import isn't one of this module's own
//     siblings, which share its class space and never get their own
//     class_refs entry.
//  5. Final fallback: mod_index selects an imported module by its (1-based)
//     position in this module's own "modules" table, and class_index then
//     indexes that module's own class list by position (not by name) —
//     this needs the external module loaded to give a real class name, so
//     it's represented as a positional JTS sentinel and resolved lazily by
//     GetClass.
func (l *Loader) resolveClassID(m *Module, id codec.ClassID) (baseModuleName, jts string, err error) {
	if id.ModIndex == 255 && id.ClassIndex == 255 {
		return "", "", nil
	}

	ds := m.Raw.DataSection

	if id.ModIndex == 0 {
		c, ok := m.classAtIndex(int(id.ClassIndex))
		if !ok {
			return "", "", fmt.Errorf("local class index %d out of range (module %s has %d classes)", id.ClassIndex, m.Name, len(ds.ClassDefs))
		}
		return m.Name, "L" + c.Name + ";", nil
	}

	if m.Raw.Header.SectionNum != 0 {
		if cr, ok := classRefByExtra(ds, id); ok {
			return l.resolveClassRefEntry(m, cr)
		}
	}

	if id.ModIndex != 255 {
		if importedName, ierr := importedModuleName(ds, id.ModIndex); ierr == nil && !m.hasSibling(importedName) {
			if cr, ok := classRefScan(ds, id); ok {
				return l.resolveClassRefEntry(m, cr)
			}
		}
	}

	if id.ModIndex != 255 {
		modIdx := int(id.ModIndex) - 1
		if modIdx < 0 || modIdx >= len(ds.Modules) {
			return "", "", fmt.Errorf("external mod index %d out of range (module %s imports %d modules)", id.ModIndex, m.Name, len(ds.Modules))
		}
		importedName, ierr := ds.Identifier(ds.Modules[modIdx].NameOffset)
		if ierr != nil {
			return "", "", fmt.Errorf("imported module name: %w", ierr)
		}
		return importedName, positionalJTS(int(id.ClassIndex)), nil
	}

	return "", "", errkind.New(errkind.BadClassRef, m.Name, "", 0,
		fmt.Errorf("class ref (mod=%d, class=%d) unresolvable", id.ModIndex, id.ClassIndex))
}

// classRefByExtra finds the class_refs entry whose own Extra field (a
// cache key planted at module-open time in heap mode, mirroring the
// original's dict((cr.extra, cr) for cr in class_refs if cr.extra !=
// (0,0))) equals id. Computed on demand rather than cached, in keeping
// with this package's other on-demand lookups (Class.FieldByOffset).
func classRefByExtra(ds *codfmt.DataSection, id codec.ClassID) (codfmt.ClassRef, bool) {
	zero := codec.ClassID{}
	for _, cr := range ds.ClassRefs {
		if cr.Extra != zero && cr.Extra == id {
			return cr, true
		}
	}
	return codfmt.ClassRef{}, false
}

// classRefScan walks class_refs in stride-256 buckets starting at
// id.ClassIndex, looking for the entry whose own ModIndex matches id's and
// whose Extra is the zero ClassID (an Extra-tagged entry belongs to the
// crem lookup above, not this scan).
func classRefScan(ds *codfmt.DataSection, id codec.ClassID) (codfmt.ClassRef, bool) {
	zero := codec.ClassID{}
	for idx := int(id.ClassIndex); idx < len(ds.ClassRefs); idx += 256 {
		cr := ds.ClassRefs[idx]
		if cr.ModIndex == uint16(id.ModIndex) && cr.Extra == zero {
			return cr, true
		}
	}
	return codfmt.ClassRef{}, false
}

// importedModuleName resolves mod_byte (1-based) against this module's own
// "modules" import table.
func importedModuleName(ds *codfmt.DataSection, modByte uint8) (string, error) {
	modIdx := int(modByte) - 1
	if modIdx < 0 || modIdx >= len(ds.Modules) {
		return "", fmt.Errorf("mod index %d out of range (%d modules)", modByte, len(ds.Modules))
	}
	return ds.Identifier(ds.Modules[modIdx].NameOffset)
}

// resolveClassRefEntry resolves a matched class_refs entry through *its
// own* ModIndex — not the original request's mod byte, which a crem or
// stride-256 match may disagree with — per ClassRef.get_class() in
// original_source/trunk/codlib/resolve.py.
func (l *Loader) resolveClassRefEntry(m *Module, cr codfmt.ClassRef) (baseModuleName, jts string, err error) {
	ds := m.Raw.DataSection
	pack, err := ds.Identifier(cr.PackName)
	if err != nil {
		return "", "", fmt.Errorf("class ref pack name: %w", err)
	}
	class, err := ds.Identifier(cr.ClassName)
	if err != nil {
		return "", "", fmt.Errorf("class ref class name: %w", err)
	}
	name := class
	if pack != "" {
		name = pack + "/" + class
	}
	importedName, err := importedModuleName(ds, uint8(cr.ModIndex))
	if err != nil {
		return "", "", err
	}
	return importedName, "L" + name + ";", nil
}

// positionalJTS encodes a class_defs position as a sentinel JTS string, for
// the foreign-positional-index fallback: the external module must actually
// load before its class at that position has a real name, so the handle
// stays lazy by carrying the raw index instead.
func positionalJTS(classIndex int) string {
	return "#" + strconv.Itoa(classIndex)
}

// parsePositionalJTS reverses positionalJTS, reporting ok=false for any
// ordinary "Lname;" JTS token.
func parsePositionalJTS(jts string) (classIndex int, ok bool) {
	if !strings.HasPrefix(jts, "#") {
		return 0, false
	}
	idx, err := strconv.Atoi(jts[1:])
	if err != nil {
		return 0, false
	}
	return idx, true
}

func (l *Loader) classHandle(m *Module, id codec.ClassID) *Handle[Class] {
	baseModuleName, jts, err := l.resolveClassID(m, id)
	if err != nil {
		return NewHandle("", "", func(string, string) (*Class, error) { return nil, err })
	}
	if baseModuleName == "" && jts == "" {
		// (255,255) sentinel: no superclass/interface to resolve.
		return NewHandle("", "", func(string, string) (*Class, error) { return nil, nil })
	}
	return NewHandle(baseModuleName, jts, l.resolveHandle)
}

func (l *Loader) resolveHandle(baseModuleName, jts string) (*Class, error) {
	if idx, ok := parsePositionalJTS(jts); ok {
		return l.getClassByPosition(baseModuleName, idx)
	}
	return l.GetClass(baseModuleName, jts)
}

// getClassByPosition resolves the foreign-positional-index fallback: idx is
// a position in the external module's own class_defs order, not a pool
// name, so it can only be resolved once that module is actually loaded.
func (l *Loader) getClassByPosition(moduleName string, idx int) (*Class, error) {
	m, err := l.LoadModule(moduleName)
	if err != nil {
		return nil, err
	}
	c, ok := m.classAtIndex(idx)
	if !ok {
		return nil, errkind.New(errkind.BadClassRef, moduleName, "", 0,
			fmt.Errorf("positional class index %d out of range (module %s has %d classes)", idx, moduleName, len(m.Raw.DataSection.ClassDefs)))
	}
	return c, nil
}

func (l *Loader) cacheClass(key classKey, c *Class) {
	l.mu.Lock()
	l.classByKey[key] = c
	l.mu.Unlock()
}

// GetClass resolves a class by (base module name, JTS class token),
// trying: the class cache, the named module directly, then the module that
// name aliases to (sibling/minor-version migration).
func (l *Loader) GetClass(baseModuleName, jts string) (*Class, error) {
	key := classKey{baseModuleName, jts}
	l.mu.RLock()
	if c, ok := l.classByKey[key]; ok {
		l.mu.RUnlock()
		return c, nil
	}
	l.mu.RUnlock()

	name := strings.TrimSuffix(strings.TrimPrefix(jts, "L"), ";")

	if m, err := l.LoadModule(baseModuleName); err == nil {
		if c, ok := m.classesByName[name]; ok {
			l.cacheClass(key, c)
			return c, nil
		}
	}

	l.mu.RLock()
	resolvedBase, aliased := l.baseModuleByName[baseModuleName]
	l.mu.RUnlock()
	if aliased && resolvedBase != baseModuleName {
		if m, err := l.LoadModule(resolvedBase); err == nil {
			if c, ok := m.classesByName[name]; ok {
				l.cacheClass(key, c)
				return c, nil
			}
		}
	}

	return nil, errkind.New(errkind.BadClassRef, baseModuleName, "", 0,
		fmt.Errorf("class not found: %s", name))
}

// moduleResolver adapts a Loader+Module pair to codec.ClassResolver, so
// TypeToken.Resolve can materialize object types without the codec package
// depending on loader.
type moduleResolver struct {
	l *Loader
	m *Module
}

// Resolver returns a codec.ClassResolver scoped to this module: ClassID
// lookups are resolved relative to m's import tables.
func (m *Module) Resolver(l *Loader) codec.ClassResolver {
	return &moduleResolver{l: l, m: m}
}

func (r *moduleResolver) ResolveByID(id codec.ClassID) (*codec.ResolvedClass, error) {
	base, jts, err := r.l.resolveClassID(r.m, id)
	if err != nil {
		return nil, err
	}
	if base == "" && jts == "" {
		return nil, nil
	}
	c, err := r.l.resolveHandle(base, jts)
	if err != nil {
		return nil, err
	}
	return &codec.ResolvedClass{Name: c.Name}, nil
}

func (r *moduleResolver) ResolveByName(name string) (*codec.ResolvedClass, error) {
	return &codec.ResolvedClass{Name: name}, nil
}
