package transform

// Mapper converts display coordinates into label volume voxel space.
type Mapper struct {
	viewer           Viewer
	labelTransform   Affine3D
	inverseTransform Affine3D
}

// NewMapper returns a mapper for a label volume placed in global space by the
// given transform.  A singular label transform is a configuration error.
func NewMapper(viewer Viewer, labelTransform Affine3D) (*Mapper, error) {
	inv, err := labelTransform.Inverse()
	if err != nil {
		return nil, err
	}
	return &Mapper{
		viewer:           viewer,
		labelTransform:   labelTransform,
		inverseTransform: inv,
	}, nil
}

// LabelTransform returns the placement of the label volume in global space.
func (m *Mapper) LabelTransform() Affine3D {
	return m.labelTransform
}

// Viewer returns the viewer whose display coordinates are mapped.
func (m *Mapper) Viewer() Viewer {
	return m.viewer
}

// ToVolumeSpace maps a display coordinate to real-valued volume coordinates.
func (m *Mapper) ToVolumeSpace(displayX, displayY float64) [3]float64 {
	global := m.viewer.DisplayToGlobal([3]float64{displayX, displayY, 0})
	return m.inverseTransform.Apply(global)
}
