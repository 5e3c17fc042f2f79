// Package loader resolves a multi-module program: opening module files,
// decoding their class/field/routine names, and materializing cross-module
// class references lazily via Handle.
package loader

import (
	"fmt"
	"os"
	"sync"

	mmap "github.com/edsrzf/mmap-go"
	"golang.org/x/sync/errgroup"

	"codtool/internal/codfmt"
	"codtool/internal/errkind"
)

// Loader is the multi-module resolver. It owns four indexes: module name to
// file path, module name to the loaded Module, module name to its base
// (canonical, post-alias) module name, and (base module name, JTS
// descriptor) to the resolved Class.
type Loader struct {
	mu sync.RWMutex

	pathByName       map[string]string
	moduleByName     map[string]*Module
	baseModuleByName map[string]string
	classByKey       map[classKey]*Class

	openFiles []*openMmap
}

type classKey struct {
	baseModuleName string
	jts            string
}

type openMmap struct {
	f    *os.File
	data mmap.MMap
}

// New creates an empty loader. Use RegisterPath to make modules discoverable
// by name before resolving references to them.
func New() *Loader {
	return &Loader{
		pathByName:       map[string]string{},
		moduleByName:     map[string]*Module{},
		baseModuleByName: map[string]string{},
		classByKey:       map[classKey]*Class{},
	}
}

// RegisterPath associates a module name with a file path, without opening
// it. LoadModule (directly, or transitively via Resolve) performs the
// actual mmap + parse the first time that name is needed.
func (l *Loader) RegisterPath(name, path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pathByName[name] = path
}

// Close unmaps every file opened by this loader.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var firstErr error
	for _, o := range l.openFiles {
		if err := o.data.Unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := o.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (l *Loader) openModuleFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("loader: mmap %s: %w", path, err)
	}
	l.mu.Lock()
	l.openFiles = append(l.openFiles, &openMmap{f: f, data: data})
	l.mu.Unlock()
	return data, nil
}

// LoadModule loads (or returns the cached) module by name.
func (l *Loader) LoadModule(name string) (*Module, error) {
	l.mu.RLock()
	if m, ok := l.moduleByName[name]; ok {
		l.mu.RUnlock()
		return m, nil
	}
	path, ok := l.pathByName[name]
	l.mu.RUnlock()
	if !ok {
		return nil, errkind.New(errkind.LoadNotFound, name, "", 0,
			fmt.Errorf("no path registered for module %q", name))
	}

	data, err := l.openModuleFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := codfmt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", path, err)
	}

	m := &Module{
		Name:            raw.DataSection.ModuleName,
		Version:         raw.DataSection.ModuleVersion,
		Path:            path,
		Raw:             raw,
		classesByOffset: map[uint16]*Class{},
		classesByName:   map[string]*Class{},
	}
	if err := l.buildClasses(m); err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}

	l.mu.Lock()
	l.moduleByName[name] = m
	l.moduleByName[m.Name] = m
	l.baseModuleByName[m.Name] = m.Name
	for _, sib := range raw.DataSection.Siblings {
		siblingName, serr := raw.DataSection.Identifier(sib)
		if serr == nil {
			l.baseModuleByName[siblingName] = m.Name
		}
	}
	l.mu.Unlock()
	return m, nil
}

// LoadModules loads the named modules in parallel via an errgroup (a name
// that is already loaded comes from the cache). Returns the first error
// encountered, if any; modules that loaded successfully before a failing
// one remain cached.
func (l *Loader) LoadModules(names []string) error {
	var g errgroup.Group
	for _, n := range names {
		name := n
		g.Go(func() error {
			_, err := l.LoadModule(name)
			return err
		})
	}
	return g.Wait()
}

// LoadedModules returns every module this loader has loaded so far,
// including ones pulled in only as a resolve-time sibling or import rather
// than named directly by a caller.
func (l *Loader) LoadedModules() []*Module {
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := make(map[*Module]bool, len(l.moduleByName))
	var out []*Module
	for _, m := range l.moduleByName {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// FindClassByName searches every module loaded so far for a class with the
// given fully-qualified, slash-separated name. Used to recover a *Class from
// a TypeToken's Resolved.Name, which carries no module of origin.
func (l *Loader) FindClassByName(name string) (*Class, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, m := range l.moduleByName {
		if c, ok := m.classesByName[name]; ok {
			return c, true
		}
	}
	return nil, false
}

func (l *Loader) buildClasses(m *Module) error {
	ds := m.Raw.DataSection
	for i, cd := range ds.ClassDefs {
		pack, err := ds.Identifier(cd.PackName)
		if err != nil {
			return fmt.Errorf("class %d pack name: %w", i, err)
		}
		class, err := ds.Identifier(cd.ClassName)
		if err != nil {
			return fmt.Errorf("class %d class name: %w", i, err)
		}
		name := class
		if pack != "" {
			name = pack + "/" + class
		}
		c := &Class{Module: m, Def: cd, Name: name}
		m.classesByOffset[ds.ClassOffsets[i]] = c
		m.classesByName[name] = c
	}

	routineCursor := 0
	for i, cd := range ds.ClassDefs {
		c := m.classesByOffset[ds.ClassOffsets[i]]
		c.Superclass = l.classHandle(m, cd.Superclass)
		for _, ifaceID := range cd.Ifaces {
			c.Ifaces = append(c.Ifaces, l.classHandle(m, ifaceID))
		}
		for _, f := range cd.Fields {
			field, err := buildField(ds, f.Name, f.Type, false, 0)
			if err != nil {
				return err
			}
			c.Fields = append(c.Fields, field)
		}
		for _, f := range cd.StaticFields {
			field, err := buildField(ds, f.Name, f.Type, true, f.Address)
			if err != nil {
				return err
			}
			c.StaticFields = append(c.StaticFields, field)
		}

		nroutines := len(cd.VirtualRoutines) + len(cd.NonvirtualRoutines) + len(cd.StaticRoutines)
		for j := 0; j < nroutines; j++ {
			rd := m.Raw.CodeSection.Routines[routineCursor]
			routineCursor++
			routine, err := buildRoutine(ds, rd)
			if err != nil {
				return fmt.Errorf("class %s routine %d: %w", name, j, err)
			}
			c.Routines = append(c.Routines, routine)
		}
	}
	return nil
}

func buildField(ds *codfmt.DataSection, nameOff, typeOff uint16, static bool, addr uint16) (*Field, error) {
	name, err := ds.Identifier(nameOff)
	if err != nil {
		return nil, fmt.Errorf("field name: %w", err)
	}
	tt, err := ds.TypeToken(typeOff)
	if err != nil {
		return nil, fmt.Errorf("field %s type: %w", name, err)
	}
	return &Field{Name: name, Type: tt, Static: static, Address: addr}, nil
}

// buildRoutine resolves a routine's name and JTS signature. rd.ParamTypes/
// rd.ReturnType are pool offsets into separate type-list/type-token entries,
// distinct pool entries rather than one combined method descriptor.
func buildRoutine(ds *codfmt.DataSection, rd *codfmt.RoutineDef) (*Routine, error) {
	name, err := ds.Identifier(rd.Name)
	if err != nil {
		return nil, fmt.Errorf("routine name: %w", err)
	}
	params, err := ds.TypeList(rd.ParamTypes)
	if err != nil {
		return nil, fmt.Errorf("routine %s param types: %w", name, err)
	}
	ret, err := ds.TypeToken(rd.ReturnType)
	if err != nil {
		return nil, fmt.Errorf("routine %s return type: %w", name, err)
	}
	return &Routine{Def: rd, Name: name, ParamTypes: params, ReturnType: ret}, nil
}

