package tile

import (
	"fmt"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

// Field declares one property column of a layer.
//
// A TypeStruct field groups string children that share one dictionary, such
// as a name and its localized variants. Children are only allowed on struct
// fields, must be strings and cannot nest further.
type Field struct {
	Name     string          `yaml:"name"`
	Type     format.DataType `yaml:"type"`
	Children []Field         `yaml:"children,omitempty"`
}

// LayerSchema declares the columns of one layer.
//
// The geometry column is implicit and always present. IDType is TypeUint32 or
// TypeUint64 when the layer carries an id column and zero otherwise.
type LayerSchema struct {
	ID     uint32          `yaml:"id"`
	Name   string          `yaml:"name"`
	Extent uint32          `yaml:"extent"`
	IDType format.DataType `yaml:"idType,omitempty"`
	Fields []Field         `yaml:"fields"`
}

// HasIDs reports whether the layer carries an id column.
func (s LayerSchema) HasIDs() bool {
	return s.IDType != 0
}

// Validate checks that every declared column has a codec.
//
// Returns ErrUnsupportedType for an unknown type, a geometry property, a
// struct with non-string or nested children, or an unusable id type, and
// ErrSchemaMismatch for duplicate field names.
func (s LayerSchema) Validate() error {
	switch s.IDType {
	case 0, format.TypeUint32, format.TypeUint64:
	default:
		return fmt.Errorf("%w: layer %q id column of type %s", errs.ErrUnsupportedType, s.Name, s.IDType)
	}

	names := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("%w: layer %q declares field %q twice", errs.ErrSchemaMismatch, s.Name, f.Name)
		}
		names[f.Name] = struct{}{}

		if err := f.validate(); err != nil {
			return fmt.Errorf("layer %q: %w", s.Name, err)
		}
	}

	return nil
}

func (f Field) validate() error {
	switch f.Type {
	case format.TypeBoolean, format.TypeInt32, format.TypeInt64, format.TypeUint32, format.TypeUint64,
		format.TypeFloat, format.TypeDouble, format.TypeString:
		if len(f.Children) > 0 {
			return fmt.Errorf("%w: %s field %q with children", errs.ErrUnsupportedType, f.Type, f.Name)
		}

		return nil
	case format.TypeStruct:
		if len(f.Children) == 0 {
			return fmt.Errorf("%w: struct field %q without children", errs.ErrUnsupportedType, f.Name)
		}
		seen := make(map[string]struct{}, len(f.Children))
		for _, child := range f.Children {
			if child.Type != format.TypeString || len(child.Children) > 0 {
				return fmt.Errorf("%w: struct field %q child %q of type %s",
					errs.ErrUnsupportedType, f.Name, child.Name, child.Type)
			}
			if _, dup := seen[child.Name]; dup {
				return fmt.Errorf("%w: struct field %q declares child %q twice", errs.ErrSchemaMismatch, f.Name, child.Name)
			}
			seen[child.Name] = struct{}{}
		}

		return nil
	default:
		return fmt.Errorf("%w: field %q of type %s", errs.ErrUnsupportedType, f.Name, f.Type)
	}
}

// TileSchema holds the schemas of every layer a tile may contain.
type TileSchema struct {
	Layers []LayerSchema `yaml:"layers"`
}

// Layer returns the schema of the layer with the given id.
func (s TileSchema) Layer(id uint32) (LayerSchema, bool) {
	for _, l := range s.Layers {
		if l.ID == id {
			return l, true
		}
	}

	return LayerSchema{}, false
}

// LayerByName returns the schema of the layer with the given name.
func (s TileSchema) LayerByName(name string) (LayerSchema, bool) {
	for _, l := range s.Layers {
		if l.Name == name {
			return l, true
		}
	}

	return LayerSchema{}, false
}
