package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_PadsShortRows(t *testing.T) {
	tb := New("A", "B", "C")
	require.NoError(t, tb.Append([]any{"1"}))
	assert.Equal(t, []any{"1", nil, nil}, tb.Rows[0])

	assert.Error(t, tb.Append([]any{"1", "2", "3", "4"}))
	assert.Equal(t, 1, tb.Len())
}

func TestFilter_ReportsDropped(t *testing.T) {
	tb := New("A")
	for _, v := range []string{"keep", "drop", "keep", "drop", "drop"} {
		require.NoError(t, tb.Append([]any{v}))
	}
	dropped := tb.Filter(func(row []any) bool { return row[0] == "keep" })
	assert.Equal(t, 3, dropped)
	assert.Equal(t, 2, tb.Len())
}

func TestRename_OnlyPresentColumns(t *testing.T) {
	tb := New("PERTE", "SEXO_PERSONA", "OTHER")
	renamed := tb.Rename(map[string]string{
		"PERTE":        "PERTENENCIA_ESTABLECIMIENTO_SALUD",
		"SEXO_PERSONA": "SEXO",
		"DIAS_ESTADIA": "DIAS_ESTADA",
		"OTHER":        "OTHER",
	})
	assert.ElementsMatch(t, []string{"PERTE", "SEXO_PERSONA"}, renamed)
	assert.Equal(t, []string{"PERTENENCIA_ESTABLECIMIENTO_SALUD", "SEXO", "OTHER"}, tb.Names())
	assert.Equal(t, 2, tb.Index("OTHER"))
	assert.Equal(t, -1, tb.Index("PERTE"))
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   Kind
	}{
		{"all ints", []any{"1", " 2 ", nil}, KindInteger},
		{"mixed numeric", []any{"1", "2.5"}, KindReal},
		{"text wins", []any{"1", "abc"}, KindText},
		{"all nil", []any{nil, nil}, KindText},
		{"coerced ints", []any{int64(3), int64(4)}, KindInteger},
		{"infinity is text", []any{"inf"}, KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := New("X")
			for _, v := range tt.values {
				require.NoError(t, tb.Append([]any{v}))
			}
			assert.Equal(t, tt.want, tb.InferKind(0))
		})
	}
}

func TestInferKind_KeepsDeclaredKind(t *testing.T) {
	tb := &Table{Columns: []Column{{Name: "ANO_EGRESO", Kind: KindInteger}}}
	assert.Equal(t, KindInteger, tb.InferKind(0))
}

func TestConvert(t *testing.T) {
	assert.Equal(t, int64(12), Convert(" 12", KindInteger))
	assert.Equal(t, int64(2), Convert(2.9, KindInteger))
	assert.Nil(t, Convert("x", KindInteger))
	assert.Equal(t, 2.5, Convert("2.5", KindReal))
	assert.Equal(t, float64(3), Convert(int64(3), KindReal))
	assert.Equal(t, "7", Convert(int64(7), KindText))
	assert.Nil(t, Convert(nil, KindText))
	assert.Equal(t, "INTEGER", KindInteger.String())
}

func TestNilTableLen(t *testing.T) {
	var tb *Table
	assert.Equal(t, 0, tb.Len())
	assert.True(t, tb.Empty())
}
