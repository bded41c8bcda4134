package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/ai4bd/brick/internal/compiler"
	"github.com/ai4bd/brick/internal/ir"
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult holds the declarations found in a directory.
type LoadResult struct {
	Declarations []ir.PropertyDecl
	Types        []string
	CUEFiles     []string
	YAMLFiles    []string
}

// FileCount returns the number of declaration files read.
func (r *LoadResult) FileCount() int {
	return len(r.CUEFiles) + len(r.YAMLFiles)
}

// LoadError represents an error that occurred during loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Source  string    // file:line:col for YAML input
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Source != "" {
		return fmt.Sprintf("%s: %s: %s", e.Source, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// yamlFile is the shape of a .yaml/.yml declaration file.
type yamlFile struct {
	Properties ir.PropertyList `yaml:"properties"`
	Types      ir.StringList   `yaml:"types"`
}

// LoadDeclarations reads every .cue, .yaml and .yml file directly inside
// dir. CUE files are loaded as one package; YAML files are decoded one by
// one in name order. CUE declarations come first.
//
// A nil result means the directory itself could not be used. A non-nil
// result with errors means some declarations failed to decode.
func LoadDeclarations(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("declarations directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing declarations directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, yamlFiles, err := FindDeclarationFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 && len(yamlFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no declaration files (.cue, .yaml, .yml) found in %s", dir)}}
	}

	result := &LoadResult{CUEFiles: cueFiles, YAMLFiles: yamlFiles}
	var errs []error

	if len(cueFiles) > 0 {
		decls, types, cueErrs := loadCUE(dir)
		result.Declarations = append(result.Declarations, decls...)
		result.Types = append(result.Types, types...)
		errs = append(errs, cueErrs...)
		if mode == LoadModeFailFast && len(errs) > 0 {
			return result, errs[:1]
		}
	}

	for _, path := range yamlFiles {
		decls, types, err := loadYAML(dir, path)
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Declarations = append(result.Declarations, decls...)
		result.Types = append(result.Types, types...)
	}

	if len(result.Declarations) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoDeclarations, Message: "no property declarations found"})
	}

	return result, errs
}

// loadCUE builds the CUE package in dir and decodes its `property` and
// `types` fields. A failed load or build is a single error. Property labels
// repeated across the package's files are returned as extra declarations so
// they reach the resolver as duplicates.
func loadCUE(dir string) ([]ir.PropertyDecl, []string, []error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	var errs []error
	decls, compileErrs := compiler.CompileProperties(value)
	for _, err := range compileErrs {
		errs = append(errs, convertCompileError(err, "property"))
	}
	decls = append(decls, compiler.RepeatedDeclarations(inst.Files)...)

	types, err := compiler.CompileTypes(value)
	if err != nil {
		errs = append(errs, convertCompileError(err, "types"))
	}

	return decls, types, errs
}

// loadYAML decodes one YAML declaration file. Sources are recorded
// relative to dir.
func loadYAML(dir, path string) ([]ir.PropertyDecl, []string, error) {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = path
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", rel, err), Source: rel}
	}

	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding %s: %v", rel, err), Source: rel}
	}

	return f.Properties.WithSourceFile(rel), f.Types, nil
}

// LoadTypes reads an external type list: a YAML sequence of type IDs or a
// mapping with a `types` key.
func LoadTypes(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading types file: %v", err)}
	}

	var list ir.StringList
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var f struct {
		Types ir.StringList `yaml:"types"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding types file %s: %v", path, err), Source: path}
	}
	return f.Types, nil
}

// FindDeclarationFiles lists the .cue and the .yaml/.yml files directly
// inside dir, each sorted by name. Subdirectories are not searched.
func FindDeclarationFiles(dir string) (cueFiles, yamlFiles []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch filepath.Ext(e.Name()) {
		case ".cue":
			cueFiles = append(cueFiles, path)
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, path)
		}
	}
	sort.Strings(cueFiles)
	sort.Strings(yamlFiles)
	return cueFiles, yamlFiles, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeDecodeFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeScanError      = "E002" // Directory scan error
	ErrCodeNoFiles        = "E003" // No declaration files found
	ErrCodeLoadFailed     = "E004" // CUE load or file read failed
	ErrCodeNotFound       = "E005" // Path not found
	ErrCodeBuildFailed    = "E006" // CUE build failed
	ErrCodeWriteFailed    = "E007" // File write error
	ErrCodeDatabase       = "E008" // Snapshot archive error
	ErrCodeTestFailed     = "E009" // Conformance scenarios failed
	ErrCodeDecodeFailed   = "E101" // Declaration body malformed
	ErrCodeNoDeclarations = "E102" // Files contain no declarations
)
