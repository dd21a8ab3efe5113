package tile

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

func TestLayerSchema_Validate(t *testing.T) {
	str := func(name string) Field { return Field{Name: name, Type: format.TypeString} }

	tests := []struct {
		name    string
		schema  LayerSchema
		wantErr error
	}{
		{"valid", testSchema().Layers[0], nil},
		{"no fields", LayerSchema{Name: "empty"}, nil},
		{"uint64 ids", LayerSchema{Name: "l", IDType: format.TypeUint64}, nil},
		{"int32 ids", LayerSchema{Name: "l", IDType: format.TypeInt32}, errs.ErrUnsupportedType},
		{"duplicate field", LayerSchema{Name: "l", Fields: []Field{str("a"), str("a")}}, errs.ErrSchemaMismatch},
		{"geometry field", LayerSchema{Name: "l", Fields: []Field{{Name: "g", Type: format.TypeGeometry}}}, errs.ErrUnsupportedType},
		{"unknown type", LayerSchema{Name: "l", Fields: []Field{{Name: "x", Type: 0x42}}}, errs.ErrUnsupportedType},
		{"empty struct", LayerSchema{Name: "l", Fields: []Field{{Name: "s", Type: format.TypeStruct}}}, errs.ErrUnsupportedType},
		{
			"scalar with children",
			LayerSchema{Name: "l", Fields: []Field{{Name: "s", Type: format.TypeString, Children: []Field{str("a")}}}},
			errs.ErrUnsupportedType,
		},
		{
			"non-string child",
			LayerSchema{Name: "l", Fields: []Field{{Name: "s", Type: format.TypeStruct, Children: []Field{
				{Name: "n", Type: format.TypeInt32},
			}}}},
			errs.ErrUnsupportedType,
		},
		{
			"nested struct",
			LayerSchema{Name: "l", Fields: []Field{{Name: "s", Type: format.TypeStruct, Children: []Field{
				{Name: "inner", Type: format.TypeString, Children: []Field{str("a")}},
			}}}},
			errs.ErrUnsupportedType,
		},
		{
			"duplicate child",
			LayerSchema{Name: "l", Fields: []Field{{Name: "s", Type: format.TypeStruct, Children: []Field{str("a"), str("a")}}}},
			errs.ErrSchemaMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTileSchema_Lookup(t *testing.T) {
	schema := testSchema()

	ls, ok := schema.Layer(2)
	require.True(t, ok)
	require.Equal(t, "pois", ls.Name)
	require.False(t, ls.HasIDs())

	ls, ok = schema.LayerByName("roads")
	require.True(t, ok)
	require.Equal(t, uint32(1), ls.ID)
	require.True(t, ls.HasIDs())

	_, ok = schema.Layer(3)
	require.False(t, ok)
	_, ok = schema.LayerByName("water")
	require.False(t, ok)
}

func TestTileSchema_YAML(t *testing.T) {
	schema := testSchema()

	out, err := yaml.Marshal(schema)
	require.NoError(t, err)
	require.Contains(t, string(out), "type: struct")
	require.Contains(t, string(out), "idType: uint32")

	var got TileSchema
	require.NoError(t, yaml.Unmarshal(out, &got))
	require.Equal(t, schema, got)
}

func TestTileSchema_YAMLUnknownType(t *testing.T) {
	doc := `
layers:
  - id: 1
    name: roads
    fields:
      - name: class
        type: text
`
	var got TileSchema
	require.Error(t, yaml.Unmarshal([]byte(doc), &got))
}
