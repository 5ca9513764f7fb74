package aas

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepaas/internal/assembly"
	"stepaas/internal/geometry"
	"stepaas/internal/ident"
	"stepaas/internal/step"
)

func buildTestTree() *assembly.Tree {
	root := &assembly.Component{
		SyntheticID: "P00001",
		Name:        "Gripper",
		SourceFile:  "main.stp",
		Kind:        assembly.KindAssembly,
		Geometry: &geometry.Measurement{
			Volume:       120.5,
			SurfaceArea:  88.25,
			CenterOfMass: geometry.Vec3{1, 2, 3},
			BoundingBox: geometry.BoundingBox{
				Min:   geometry.Vec3{0, 0, 0},
				Max:   geometry.Vec3{4, 5, 6},
				Range: geometry.Vec3{4, 5, 6},
			},
		},
	}
	// Two children with identical names exercise idShort disambiguation.
	for _, id := range []string{"P00002", "P00003"} {
		child := &assembly.Component{
			SyntheticID: id,
			Name:        "Bracket",
			SourceFile:  "main.stp",
			Kind:        assembly.KindPart,
			Annotations: []assembly.Annotation{{Name: "Torque", Description: "10 Nm"}},
		}
		root.AddChild(child)
	}
	screw := &assembly.Component{
		SyntheticID: "P00004",
		Name:        "M6 Screw",
		SourceFile:  "main.stp",
		Kind:        assembly.KindStandardPart,
	}
	root.AddChild(screw)

	return &assembly.Tree{Root: root}
}

func findCollection(t *testing.T, elements []Element, idShort string) *Collection {
	t.Helper()
	for _, e := range elements {
		if c, ok := e.(*Collection); ok && c.IDShort == idShort {
			return c
		}
	}
	t.Fatalf("collection %q not found", idShort)
	return nil
}

func propertyValues(elements []Element) map[string]string {
	out := make(map[string]string)
	for _, e := range elements {
		if p, ok := e.(*Property); ok {
			out[p.IDShort] = p.Value
		}
	}
	return out
}

func TestBuildEnvironment(t *testing.T) {
	b := NewBuilder(ident.NewAllocator(), nil)
	header := step.Header{Author: "J. Weber", Organization: "Example GmbH"}

	env := b.BuildEnvironment(buildTestTree(), header, "dir/main.stp", "Gripper_Line")

	require.Len(t, env.Shells, 1)
	require.Len(t, env.Submodels, 1)
	assert.Equal(t, env.Submodels[0].ID, env.Shells[0].Submodels[0])
	assert.True(t, strings.HasPrefix(env.Submodels[0].ID, "https://Gripper_Line.com/ids/sm/"))

	main := findCollection(t, env.Submodels[0].Elements, "Main_Assembly")
	props := propertyValues(main.Value)
	assert.Equal(t, "P00001", props["Product_ID"])
	assert.Equal(t, "ASSEMBLY", props["Type"])
	assert.Equal(t, "0", props["Level"])
	assert.Equal(t, "main.stp", props["Main_Assembly_Name"])
	assert.Equal(t, "J. Weber", props["Main_Assembly_Author"])
	assert.Equal(t, "Example GmbH", props["Main_Assembly_Organization"])

	t.Run("repeated component names get distinct idShorts", func(t *testing.T) {
		components := findCollection(t, main.Value, "Components")
		require.Len(t, components.Value, 3)
		seen := make(map[string]bool)
		for _, e := range components.Value {
			c := e.(*Collection)
			assert.False(t, seen[c.IDShort], "duplicate idShort %q", c.IDShort)
			seen[c.IDShort] = true
		}
		assert.True(t, seen["Bracket"])
		assert.True(t, seen["Bracket_P00003"], "second Bracket disambiguated by context token")
	})

	t.Run("reserved labels repeat at every depth", func(t *testing.T) {
		components := findCollection(t, main.Value, "Components")
		for _, e := range components.Value {
			childProps := propertyValues(e.(*Collection).Value)
			assert.Contains(t, childProps, "Product_ID")
			assert.Contains(t, childProps, "Type")
			assert.Contains(t, childProps, "Level")
			assert.Contains(t, childProps, "Source_File")
		}
	})

	t.Run("standard part marker", func(t *testing.T) {
		components := findCollection(t, main.Value, "Components")
		var screw *Collection
		for _, e := range components.Value {
			if c := e.(*Collection); strings.HasPrefix(c.IDShort, "M6_Screw") {
				screw = c
			}
		}
		require.NotNil(t, screw)
		assert.Equal(t, "STANDARD_PART", propertyValues(screw.Value)["Standard_Type"])
	})

	t.Run("geometry only at root", func(t *testing.T) {
		geo := findCollection(t, main.Value, "Geometry")
		geoProps := propertyValues(geo.Value)
		assert.Equal(t, "120.5", geoProps["Volume"])
		assert.Equal(t, "88.25", geoProps["Surface_Area"])

		com := findCollection(t, geo.Value, "Center_of_Mass")
		assert.Equal(t, "1", propertyValues(com.Value)["X"])

		box := findCollection(t, geo.Value, "Bounding_Box")
		rng := findCollection(t, box.Value, "Range")
		assert.Equal(t, "6", propertyValues(rng.Value)["Z"])
	})

	t.Run("degenerate semantic ids without a dictionary", func(t *testing.T) {
		p := main.Value[0].(*Property)
		assert.Equal(t, "0000", p.SemanticID)
	})
}

func TestWritePackage(t *testing.T) {
	dir := t.TempDir()
	auxPath := filepath.Join(dir, "Bracket-1.stp")
	require.NoError(t, os.WriteFile(auxPath, []byte("ISO-10303-21;\n"), 0o644))

	tree := buildTestTree()
	tree.Root.Children[0].AddAnnotationFile(auxPath)

	b := NewBuilder(ident.NewAllocator(), nil)
	env := b.BuildEnvironment(tree, step.Header{}, "main.stp", "Gripper_Line")

	pkgPath := filepath.Join(dir, "out", "assembly.aasx")
	require.NoError(t, WritePackage(pkgPath, env, b.Files()))

	r, err := zip.OpenReader(pkgPath)
	require.NoError(t, err)
	defer r.Close()

	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}
	assert.True(t, names["aasx/environment.json"])
	assert.True(t, names["aasx/stp/annotations/Bracket_1.stp"])
}
