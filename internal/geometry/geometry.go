// Package geometry defines the external geometry collaborator consulted for
// the tree root. Absence of geometry is never an error.
package geometry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Vec3 is an x/y/z triple in document units.
type Vec3 [3]float64

// BoundingBox is an axis-aligned box. Range is Max - Min per axis.
type BoundingBox struct {
	Min   Vec3 `json:"min"`
	Max   Vec3 `json:"max"`
	Range Vec3 `json:"range"`
}

// Measurement is the bag of measurements a geometry service computes for one
// document.
type Measurement struct {
	Volume       float64     `json:"volume"`
	SurfaceArea  float64     `json:"surface_area"`
	CenterOfMass Vec3        `json:"center_of_mass"`
	BoundingBox  BoundingBox `json:"bounding_box"`
}

// Measurer computes measurements for a referenced document. A nil
// measurement with a nil error means "no geometry available".
type Measurer interface {
	Measure(ctx context.Context, documentPath string) (*Measurement, error)
}

// Disabled returns a measurer that always reports no geometry.
func Disabled() Measurer { return disabled{} }

type disabled struct{}

func (disabled) Measure(context.Context, string) (*Measurement, error) { return nil, nil }

// SidecarSuffix names the per-document measurement file an external geometry
// service leaves next to the exchange document.
const SidecarSuffix = ".geometry.json"

// Sidecar reads precomputed measurements from `<document>.geometry.json`.
type Sidecar struct{}

func NewSidecar() Sidecar { return Sidecar{} }

// Measure loads the sidecar for documentPath. A missing sidecar is "no
// geometry"; a malformed one is an error the caller may downgrade.
func (Sidecar) Measure(_ context.Context, documentPath string) (*Measurement, error) {
	path := sidecarPath(documentPath)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read geometry sidecar %s: %w", path, err)
	}

	var m Measurement
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode geometry sidecar %s: %w", path, err)
	}
	if m.Volume < 0 || m.SurfaceArea < 0 {
		return nil, fmt.Errorf("geometry sidecar %s: negative measurements", path)
	}

	var zero Vec3
	if m.BoundingBox.Range == zero {
		for i := range m.BoundingBox.Range {
			m.BoundingBox.Range[i] = m.BoundingBox.Max[i] - m.BoundingBox.Min[i]
		}
	}
	return &m, nil
}

func sidecarPath(documentPath string) string {
	if idx := strings.LastIndex(documentPath, "."); idx > strings.LastIndexAny(documentPath, `/\`) {
		return documentPath[:idx] + SidecarSuffix
	}
	return documentPath + SidecarSuffix
}
