package interp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/diagnostic"
	"github.com/lhaig/fun/internal/parser"
)

// SourceExt is the extension every FUN source file and import must carry.
const SourceExt = ".fun"

// Registry manages the files of one program and their import graph.
// It discovers all transitive imports from an entry file using BFS,
// then parses the files in dependency order so that each file can use the
// constructors its imports declare.
type Registry struct {
	sources      map[string]string       // absolute file path -> source text
	modules      map[string]*ast.Program // absolute file path -> parsed AST
	dependencies map[string][]string     // absolute file path -> imported absolute file paths
	entryPath    string
}

// NewRegistry creates a new registry rooted at the given entry file.
func NewRegistry(entryPath string) (*Registry, error) {
	absPath, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entry path: %w", err)
	}

	return &Registry{
		sources:      make(map[string]string),
		modules:      make(map[string]*ast.Program),
		dependencies: make(map[string][]string),
		entryPath:    absPath,
	}, nil
}

// EntryPath returns the absolute path of the entry file.
func (r *Registry) EntryPath() string { return r.entryPath }

// Discover performs BFS from the entry file, reading each discovered file
// and collecting its imports. Only import headers are parsed here, since
// constructor names are not known until dependencies are loaded. It returns
// diagnostics for malformed headers and an error for unreadable files.
func (r *Registry) Discover() (*diagnostic.Diagnostics, error) {
	diag := diagnostic.New()
	queue := []string{r.entryPath}
	visited := make(map[string]bool)

	for len(queue) > 0 {
		filePath := queue[0]
		queue = queue[1:]

		if visited[filePath] {
			continue
		}
		visited[filePath] = true

		source, err := os.ReadFile(filePath)
		if err != nil {
			return diag, fmt.Errorf("cannot read %s: %w", filePath, err)
		}
		r.sources[filePath] = string(source)

		imports, headerDiag := parser.ScanImports(string(source))
		diag.Merge(headerDiag, filePath)

		var deps []string
		for _, imp := range imports {
			resolved := resolveImportPath(imp.Path, filepath.Dir(filePath))

			if !strings.HasSuffix(resolved, SourceExt) {
				diag.ErrorfInFile(filePath, imp.Line, imp.Column,
					"import path must have %s extension: %s", SourceExt, imp.Path)
				continue
			}
			if _, err := os.Stat(resolved); err != nil {
				diag.Add(diagnostic.Diagnostic{
					Severity: diagnostic.Error,
					Message:  fmt.Sprintf("imported file not found: %s", imp.Path),
					Line:     imp.Line,
					Column:   imp.Column,
					File:     filePath,
					Hint:     "import paths are relative to the importing file",
				})
				continue
			}

			deps = append(deps, resolved)
			if !visited[resolved] {
				queue = append(queue, resolved)
			}
		}
		r.dependencies[filePath] = deps
	}

	return diag, nil
}

// TopologicalSort returns files in dependency order (dependencies first,
// entry file last). Returns an error if an import cycle is detected,
// with a clear message showing the cycle path.
func (r *Registry) TopologicalSort() ([]string, error) {
	var sorted []string
	visiting := make(map[string]bool) // recursion stack
	visited := make(map[string]bool)

	var visit func(path string, stack []string) error
	visit = func(path string, stack []string) error {
		if visiting[path] {
			cycleStart := 0
			for i, p := range stack {
				if p == path {
					cycleStart = i
					break
				}
			}
			cyclePath := append(stack[cycleStart:], path)
			names := make([]string, len(cyclePath))
			for i, p := range cyclePath {
				names[i] = filepath.Base(p)
			}
			return fmt.Errorf("import cycle detected: %s", strings.Join(names, " -> "))
		}
		if visited[path] {
			return nil
		}

		visiting[path] = true
		stack = append(stack, path)
		for _, dep := range r.dependencies[path] {
			if err := visit(dep, stack); err != nil {
				return err
			}
		}
		visiting[path] = false
		visited[path] = true
		sorted = append(sorted, path)
		return nil
	}

	if err := visit(r.entryPath, nil); err != nil {
		return nil, err
	}
	return sorted, nil
}

// Load parses every discovered file in the given order. Each file is parsed
// with the constructors of its transitive imports in scope; a constructor
// name declared by two files both visible to the same importer is an error.
func (r *Registry) Load(order []string) *diagnostic.Diagnostics {
	diag := diagnostic.New()
	visible := make(map[string][]*ast.DataConstructor) // path -> constructors it can see, incl. its own

	for _, path := range order {
		inherited, conflicts := r.inherited(path, visible)
		for _, c := range conflicts {
			diag.ErrorfInFile(path, 1, 1, "%s", c)
		}

		p := parser.New(r.sources[path], parser.WithConstructors(inherited...))
		prog := p.Parse()
		diag.Merge(p.Diagnostics(), path)
		r.modules[path] = prog

		if path != r.entryPath && prog.Body != nil {
			line, col := prog.Body.Pos()
			diag.Add(diagnostic.Diagnostic{
				Severity: diagnostic.Warning,
				Message:  "expression in imported file is ignored",
				Line:     line,
				Column:   col,
				File:     path,
				Hint:     "imported files contribute only their data declarations",
			})
		}
		visible[path] = append(inherited, prog.Constructors()...)
	}
	return diag
}

// inherited collects the constructors visible through path's imports.
func (r *Registry) inherited(path string, visible map[string][]*ast.DataConstructor) ([]*ast.DataConstructor, []string) {
	var ctors []*ast.DataConstructor
	var conflicts []string
	owner := make(map[string]*ast.DataConstructor)
	for _, dep := range r.dependencies[path] {
		for _, c := range visible[dep] {
			if prev, ok := owner[c.Name]; ok {
				if prev != c {
					conflicts = append(conflicts, fmt.Sprintf(
						"constructor '%s' is declared by more than one imported file", c.Name))
				}
				continue
			}
			owner[c.Name] = c
			ctors = append(ctors, c)
		}
	}
	return ctors, conflicts
}

// Module returns the parsed AST for a given absolute file path,
// or nil if the path has not been loaded.
func (r *Registry) Module(path string) *ast.Program {
	return r.modules[path]
}

// Entry returns the parsed entry file, or nil before Load.
func (r *Registry) Entry() *ast.Program {
	return r.modules[r.entryPath]
}

// resolveImportPath resolves an import path relative to the importing
// file's directory.
func resolveImportPath(importPath, dir string) string {
	if filepath.IsAbs(importPath) {
		return filepath.Clean(importPath)
	}
	return filepath.Clean(filepath.Join(dir, importPath))
}
