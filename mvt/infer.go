package mvt

import (
	"math"
	"sort"
	"strings"

	orbmvt "github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"

	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/internal/options"
	"github.com/arloliu/mlt/tile"
)

// structDefaultChild names the struct child holding the bare prefix property.
const structDefaultChild = "default"

// InferSchema derives a tile schema from decoded MVT layers. Layer ids are
// assigned from the layer order.
//
// Property types are widened over every non-null value of a property:
//   - only booleans: boolean
//   - only integral numbers: int32 when all fit, else int64, else uint64
//   - any fractional number: float when every value is exact as float32, else double
//   - strings, or a mix of kinds: string
//
// Properties that are null on every feature get no column.
//
// Parameters:
//   - layers: Decoded MVT layers
//   - opts: WithIDs and WithColumnMappings
//
// Returns:
//   - tile.TileSchema: One layer schema per input layer
//   - error: An invalid option
func InferSchema(layers orbmvt.Layers, opts ...InferOption) (tile.TileSchema, error) {
	cfg := &InferConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return tile.TileSchema{}, err
	}

	schema := tile.TileSchema{Layers: make([]tile.LayerSchema, 0, len(layers))}
	for i, l := range layers {
		schema.Layers = append(schema.Layers, inferLayer(uint32(i), l, cfg)) //nolint: gosec
	}

	return schema, nil
}

func inferLayer(id uint32, l *orbmvt.Layer, cfg *InferConfig) tile.LayerSchema {
	ls := tile.LayerSchema{ID: id, Name: l.Name, Extent: l.Extent}

	if cfg.ids {
		ls.IDType = inferIDType(l.Features)
	}

	stats := make(map[string]*propertyStats)
	for _, f := range l.Features {
		for key, v := range f.Properties {
			if v == nil {
				continue
			}
			s, ok := stats[key]
			if !ok {
				s = newPropertyStats()
				stats[key] = s
			}
			s.add(v)
		}
	}

	grouped := make(map[string]struct{})
	for _, m := range cfg.mappings {
		field, members, ok := groupStruct(m, stats)
		if !ok {
			continue
		}
		for _, key := range members {
			grouped[key] = struct{}{}
		}
		ls.Fields = append(ls.Fields, field)
	}

	for key, s := range stats {
		if _, ok := grouped[key]; ok {
			continue
		}
		ls.Fields = append(ls.Fields, tile.Field{Name: key, Type: s.dataType()})
	}

	sort.Slice(ls.Fields, func(i, j int) bool {
		return ls.Fields[i].Name < ls.Fields[j].Name
	})

	return ls
}

// inferIDType returns TypeUint32 when every feature id fits 32 bits,
// TypeUint64 when some does not, and zero when no feature has an id.
func inferIDType(features []*geojson.Feature) format.DataType {
	typ := format.DataType(0)
	for _, f := range features {
		id, ok := featureID(f)
		if !ok {
			continue
		}
		if id > math.MaxUint32 {
			return format.TypeUint64
		}
		typ = format.TypeUint32
	}

	return typ
}

// groupStruct builds the struct field for mapping m from the properties it
// covers. Mappings that cover no property or a non-string property are not applied.
func groupStruct(m ColumnMapping, stats map[string]*propertyStats) (tile.Field, []string, bool) {
	prefix := m.Prefix + m.delimiter()

	var (
		members  []string
		children []tile.Field
	)
	for key, s := range stats {
		var child string
		switch {
		case key == m.Prefix:
			child = structDefaultChild
		case strings.HasPrefix(key, prefix) && len(key) > len(prefix):
			child = key[len(prefix):]
		default:
			continue
		}
		if s.dataType() != format.TypeString {
			return tile.Field{}, nil, false
		}
		members = append(members, key)
		children = append(children, tile.Field{Name: child, Type: format.TypeString})
	}
	if len(children) == 0 {
		return tile.Field{}, nil, false
	}

	sort.Slice(children, func(i, j int) bool {
		ci, cj := children[i].Name, children[j].Name
		if ci == structDefaultChild || cj == structDefaultChild {
			return ci == structDefaultChild && cj != structDefaultChild
		}

		return ci < cj
	})

	return tile.Field{Name: m.Prefix, Type: format.TypeStruct, Children: children}, members, true
}

// propertyStats accumulates the value kinds seen for one property.
type propertyStats struct {
	bools   bool
	strings bool
	ints    bool
	floats  bool

	minInt int64
	maxInt uint64 // largest non-negative integer seen
	exact  bool   // every number is exact as float32
}

func newPropertyStats() *propertyStats {
	return &propertyStats{exact: true}
}

func (s *propertyStats) add(v any) {
	switch n := v.(type) {
	case bool:
		s.bools = true
	case string:
		s.strings = true
	case int:
		s.addInt(int64(n))
	case int8:
		s.addInt(int64(n))
	case int16:
		s.addInt(int64(n))
	case int32:
		s.addInt(int64(n))
	case int64:
		s.addInt(n)
	case uint:
		s.addUint(uint64(n))
	case uint8:
		s.addUint(uint64(n))
	case uint16:
		s.addUint(uint64(n))
	case uint32:
		s.addUint(uint64(n))
	case uint64:
		s.addUint(n)
	case float32:
		s.addFloat(float64(n))
	case float64:
		s.addFloat(n)
	default:
		s.strings = true
	}
}

func (s *propertyStats) addInt(i int64) {
	if i < 0 {
		s.minInt = min(s.minInt, i)
		s.ints = true
		s.exact = s.exact && float64(float32(i)) == float64(i)

		return
	}
	s.addUint(uint64(i))
}

func (s *propertyStats) addUint(u uint64) {
	s.ints = true
	if u > s.maxInt {
		s.maxInt = u
	}
	s.exact = s.exact && uint64(float32(u)) == u
}

func (s *propertyStats) addFloat(f float64) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		s.floats = true
		return
	case f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64:
		s.addInt(int64(f))
		return
	case f == math.Trunc(f) && f >= 0 && f < math.MaxUint64:
		s.addUint(uint64(f))
		return
	}
	s.floats = true
	s.exact = s.exact && float64(float32(f)) == f
}

func (s *propertyStats) dataType() format.DataType {
	numeric := s.ints || s.floats
	switch {
	case s.strings || (s.bools && numeric):
		return format.TypeString
	case s.bools:
		return format.TypeBoolean
	case s.floats:
		if s.exact {
			return format.TypeFloat
		}

		return format.TypeDouble
	case s.minInt >= math.MinInt32 && s.maxInt <= math.MaxInt32:
		return format.TypeInt32
	case s.maxInt <= math.MaxInt64:
		return format.TypeInt64
	case s.minInt >= 0:
		return format.TypeUint64
	default:
		return format.TypeDouble
	}
}
