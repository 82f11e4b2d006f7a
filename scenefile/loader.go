package scenefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gogpu/vtbuf"
	"github.com/gogpu/vtbuf/ctyvalue"
	"github.com/gogpu/vtbuf/internal/ctxlog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/image/math/f64"
	"golang.org/x/text/unicode/norm"
)

// Errors returned by Load and Parse.
var (
	ErrDuplicateName = errors.New("scenefile: duplicate source name")
	ErrNoFiles       = errors.New("scenefile: no .hcl files found")
)

// fileRoot is the top level of a scene file.
type fileRoot struct {
	Primvars   []*primvarBlock   `hcl:"primvar,block"`
	Transforms []*transformBlock `hcl:"transform,block"`
}

type primvarBlock struct {
	Name      string         `hcl:"name,label"`
	Type      string         `hcl:"type"`
	ArraySize *int           `hcl:"array_size,optional"`
	Value     hcl.Expression `hcl:"value"`
	DefRange  hcl.Range      `hcl:",def_range"`
}

type transformBlock struct {
	Name      string         `hcl:"name,label"`
	ArraySize *int           `hcl:"array_size,optional"`
	Matrices  hcl.Expression `hcl:"matrices,optional"`
	Translate hcl.Expression `hcl:"translate,optional"`
	Scale     hcl.Expression `hcl:"scale,optional"`
	DefRange  hcl.Range      `hcl:",def_range"`
}

// Load parses every given file, and every .hcl file below each given
// directory, into one Scene. Source names must be unique across files.
func Load(ctx context.Context, paths ...string) (*Scene, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	logger.Debug("scenefile: loading", "files", len(files))

	parser := hclparse.NewParser()
	scene := newScene()
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, diags := parser.ParseHCLFile(name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("scenefile: parse %s: %w", name, diags)
		}
		if err := decodeFile(ctx, f, scene); err != nil {
			return nil, fmt.Errorf("scenefile: decode %s: %w", name, err)
		}
	}

	logger.Debug("scenefile: loaded", "sources", len(scene.sources), "invalid", len(scene.Invalid()))
	return scene, nil
}

// Parse decodes a single scene file held in memory. filename is only used
// in diagnostics.
func Parse(ctx context.Context, src []byte, filename string) (*Scene, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("scenefile: parse %s: %w", filename, diags)
	}
	scene := newScene()
	if err := decodeFile(ctx, f, scene); err != nil {
		return nil, fmt.Errorf("scenefile: decode %s: %w", filename, err)
	}
	return scene, nil
}

func decodeFile(ctx context.Context, f *hcl.File, scene *Scene) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return diags
	}

	for _, b := range root.Primvars {
		src, err := b.source(ctx)
		if err != nil {
			return err
		}
		if err := addUnique(scene, src, b.DefRange); err != nil {
			return err
		}
	}
	for _, b := range root.Transforms {
		src, err := b.source()
		if err != nil {
			return err
		}
		if err := addUnique(scene, src, b.DefRange); err != nil {
			return err
		}
	}
	return nil
}

func addUnique(scene *Scene, src vtbuf.BufferSource, rng hcl.Range) error {
	if _, dup := scene.byName[src.Name()]; dup {
		return fmt.Errorf("%w: %q at %s", ErrDuplicateName, src.Name(), rng)
	}
	scene.add(src)
	return nil
}

func (b *primvarBlock) source(ctx context.Context) (vtbuf.BufferSource, error) {
	name := normalizeName(b.Name)
	arraySize := arraySizeOr1(b.ArraySize)

	v, diags := b.Value.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	if _, err := ctyvalue.KindOf(b.Type); err != nil {
		// Keep the raw value; the source reports itself invalid.
		ctxlog.FromContext(ctx).Warn("scenefile: unknown primvar type",
			"source", name, "type", b.Type, "at", b.DefRange.String())
		return vtbuf.NewValueSource(name, vtbuf.ValueOf(v), arraySize)
	}

	value, err := ctyvalue.Convert(v, b.Type)
	if err != nil {
		return nil, fmt.Errorf("primvar %q at %s: %w", name, b.DefRange, err)
	}
	return vtbuf.NewValueSource(name, value, arraySize)
}

func (b *transformBlock) source() (vtbuf.BufferSource, error) {
	name := normalizeName(b.Name)

	matrices, diags := b.Matrices.Value(nil)
	translate, moreDiags := b.Translate.Value(nil)
	diags = append(diags, moreDiags...)
	scale, moreDiags := b.Scale.Value(nil)
	diags = append(diags, moreDiags...)
	if diags.HasErrors() {
		return nil, diags
	}

	if !matrices.IsNull() {
		if !translate.IsNull() || !scale.IsNull() {
			return nil, fmt.Errorf("transform %q at %s: matrices cannot be combined with translate or scale", name, b.DefRange)
		}
		ms, err := decodeMatrices(matrices)
		if err != nil {
			return nil, fmt.Errorf("transform %q at %s: %w", name, b.DefRange, err)
		}
		return vtbuf.NewMatrixArraySource(name, ms, arraySizeOr1(b.ArraySize))
	}

	m := vtbuf.IdentityMatrix()
	if !scale.IsNull() {
		s, err := decodeVec3(scale)
		if err != nil {
			return nil, fmt.Errorf("transform %q scale at %s: %w", name, b.DefRange, err)
		}
		m = vtbuf.MultiplyMatrix(m, vtbuf.ScaleMatrix(s[0], s[1], s[2]))
	}
	if !translate.IsNull() {
		t, err := decodeVec3(translate)
		if err != nil {
			return nil, fmt.Errorf("transform %q translate at %s: %w", name, b.DefRange, err)
		}
		m = vtbuf.MultiplyMatrix(m, vtbuf.TranslateMatrix(t[0], t[1], t[2]))
	}
	return vtbuf.NewMatrixSource(name, m), nil
}

// decodeMatrices accepts one flat matrix or a list of them.
func decodeMatrices(v cty.Value) ([]f64.Mat4, error) {
	value, err := ctyvalue.Convert(v, "matrix4d")
	if err != nil {
		return nil, err
	}
	switch ms := value.Any().(type) {
	case []f64.Mat4:
		return ms, nil
	case f64.Mat4:
		return []f64.Mat4{ms}, nil
	default:
		return nil, fmt.Errorf("%w: got %s", ctyvalue.ErrShape, value)
	}
}

func decodeVec3(v cty.Value) (f64.Vec3, error) {
	value, err := ctyvalue.Convert(v, "double3")
	if err != nil {
		return f64.Vec3{}, err
	}
	vec, ok := value.Any().(f64.Vec3)
	if !ok {
		return f64.Vec3{}, fmt.Errorf("%w: got %s, want a single 3-vector", ctyvalue.ErrShape, value)
	}
	return vec, nil
}

func arraySizeOr1(n *int) int {
	if n == nil {
		return 1
	}
	return *n
}

// normalizeName puts names in Unicode NFC so that composed and decomposed
// spellings of the same name match the same buffer spec.
func normalizeName(name string) string {
	return norm.NFC.String(name)
}

// findHCLFiles expands directories to the .hcl files below them, keeping
// argument order and dropping repeats.
func findHCLFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("scenefile: %w", err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scenefile: %w", err)
		}
	}
	return files, nil
}
