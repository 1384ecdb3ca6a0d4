package selection

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// GeoJSON returns the selected variables of one scale that carry a
// geometry as a feature collection.
func (p *Payload) GeoJSON(scale int) (*geojson.FeatureCollection, error) {
	if !ValidScale(scale) || scale >= len(p.Views) {
		return nil, fmt.Errorf("%w: %d", ErrScaleOutOfRange, scale)
	}
	fc := geojson.NewFeatureCollection()
	view := p.Views[scale]
	for _, c := range Categories() {
		for _, idx := range view.Of(c) {
			if idx < 0 || idx >= len(p.Features) {
				continue
			}
			f := p.Features[idx]
			if f.Geometry == nil {
				continue
			}
			feature := geojson.NewFeature(f.Geometry.Orb())
			feature.Properties["id"] = f.ID
			feature.Properties["index"] = idx
			feature.Properties["type"] = string(f.Type)
			feature.Properties["category"] = c.String()
			feature.Properties["scale"] = scale
			if f.Layer != "" {
				feature.Properties["layer"] = f.Layer
			}
			fc.Append(feature)
		}
	}
	return fc, nil
}
