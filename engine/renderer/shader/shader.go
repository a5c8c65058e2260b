package shader

import (
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
	"github.com/Carmen-Shannon/oxy-layout/engine/layout/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// shader is the implementation of the Shader interface.
// It holds the WGSL source and the vertex input records parsed from it.
type shader struct {
	key        string
	source     string
	entryPoint string
	records    []Record
	module     *wgpu.ShaderModuleDescriptor
}

// Shader defines the interface for a loaded and parsed WGSL vertex shader. It exposes the
// shader's key, source code, vertex entry point and the vertex input records that describe
// its vertex buffers.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint returns the name of the first @vertex function in the source.
	//
	// Returns:
	//   - string: the entry point name, or empty if the source has none
	EntryPoint() string

	// Records returns the vertex input records in declaration order.
	//
	// Returns:
	//   - []Record: the parsed records
	Records() []Record

	// Record looks up a vertex input record by struct name.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - Record: the record, or the zero value
	//   - bool: false if no vertex input struct has that name
	Record(name string) (Record, bool)

	// VertexLayouts resolves every record. The result is keyed by record index, which is
	// also the vertex buffer slot the record is meant for.
	//
	// Returns:
	//   - map[int]layout.ResolvedLayout: resolved layouts keyed by record index
	//   - error: the joined resolution errors of all failing records
	VertexLayouts() (map[int]layout.ResolvedLayout, error)

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader parses WGSL source into a Shader.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - source: the WGSL source code
//
// Returns:
//   - Shader: the parsed shader
//   - error: the ParseRecords error, if any
func NewShader(key, source string) (Shader, error) {
	if key == "" {
		panic("shader: key must not be empty")
	}
	records, err := ParseRecords(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return &shader{
		key:        key,
		source:     source,
		entryPoint: parseEntryPoint(source),
		records:    records,
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
	}, nil
}

// NewShaderFromPath reads a WGSL file and parses it with NewShader, using the path as key.
//
// Parameters:
//   - path: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
//   - error: a read or parse error
func NewShaderFromPath(path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to read source file %q: %w", path, err)
	}
	return NewShader(path, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Records() []Record {
	return s.records
}

func (s *shader) Record(name string) (Record, bool) {
	for _, r := range s.records {
		if r.Name == name {
			return r, true
		}
	}
	return Record{}, false
}

func (s *shader) VertexLayouts() (map[int]layout.ResolvedLayout, error) {
	result := make(map[int]layout.ResolvedLayout, len(s.records))
	var errs []error
	for i, r := range s.records {
		l, err := r.Resolve()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		result[i] = l
	}
	return result, errors.Join(errs...)
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

// Resolve resolves the record into a packed layout. A field error from the resolver is
// annotated with the field's source line.
//
// Returns:
//   - layout.ResolvedLayout: the resolved layout
//   - error: the resolver error, wrapped with the struct name
func (r Record) Resolve() (layout.ResolvedLayout, error) {
	l, err := layout.Resolve(r.StepMode, r.Fields)
	if err == nil {
		return l, nil
	}
	var lerr *layout.Error
	if errors.As(err, &lerr) && lerr.Line == 0 && lerr.Field >= 0 && lerr.Field < len(r.FieldLines) {
		lerr.Line = r.FieldLines[lerr.Field]
	}
	return layout.ResolvedLayout{}, fmt.Errorf("struct %s: %w", r.Name, err)
}

// BuildVertexLayouts resolves every record of s and renders it with b, in record order,
// ready for a render pipeline's vertex buffer list.
//
// Parameters:
//   - s: the parsed shader
//   - b: the backend producing the API descriptor
//
// Returns:
//   - []T: one descriptor per record
//   - error: the first resolution or backend error
func BuildVertexLayouts[T any](s Shader, b backend.Backend[T]) ([]T, error) {
	records := s.Records()
	out := make([]T, 0, len(records))
	for _, r := range records {
		l, err := r.Resolve()
		if err != nil {
			return nil, fmt.Errorf("shader %s: %w", s.Key(), err)
		}
		desc, err := b.Build(l)
		if err != nil {
			return nil, fmt.Errorf("shader %s: struct %s: %w", s.Key(), r.Name, err)
		}
		out = append(out, desc)
	}
	return out, nil
}
