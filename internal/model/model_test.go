package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLayout_MidpointRule(t *testing.T) {
	layout := NewColumnLayout([]Column{{Name: "C", X: 120}, {Name: "A", X: 0}, {Name: "B", X: 50}}, 200, 5)

	assert.Equal(t, []string{"A", "B", "C"}, layout.Names())
	assert.Equal(t, []float64{0, 25, 85, 198}, layout.Edges)

	tests := []struct {
		x    float64
		want string
		ok   bool
	}{
		{0, "A", true},
		{24.9, "A", true},
		{25, "B", true},
		{45, "B", true},
		{85, "C", true},
		{197, "C", true},
		{198, "", false},
		{-1, "", false},
	}
	for _, tt := range tests {
		got, ok := layout.Assign(tt.x)
		assert.Equal(t, tt.ok, ok, "x=%v", tt.x)
		assert.Equal(t, tt.want, got, "x=%v", tt.x)
	}
}

func TestColumnLayout_Split(t *testing.T) {
	layout := NewColumnLayout([]Column{{Name: "N°", X: 30}, {Name: "Designation", X: 60}}, 300, 5)
	line := Line{Words: []Word{
		{Text: "7", X0: 31},
		{Text: "SIROP", X0: 62},
		{Text: "ENFANT", X0: 100},
		{Text: "marge", X0: 299},
	}}

	assert.Equal(t, map[string]string{"N°": "7", "Designation": "SIROP ENFANT"}, layout.Split(line))
	assert.Equal(t, "7 SIROP ENFANT marge", line.Text())
}

func TestColumnLayout_Empty(t *testing.T) {
	layout := NewColumnLayout(nil, 300, 5)
	assert.True(t, layout.Empty())
	_, ok := layout.Assign(10)
	assert.False(t, ok)
}

func TestValue(t *testing.T) {
	assert.True(t, Text("  ").IsEmpty())
	assert.Equal(t, "12.5", Number(12.5).String())
	assert.Equal(t, "3", Number(3).String())
	assert.Nil(t, Empty().Any())
	assert.True(t, Empty().Equal(Empty()))
	assert.False(t, Number(5).Equal(Text("5")))
	assert.True(t, Text("a").Equal(Text("a")))
}

func TestRecord_KeyString(t *testing.T) {
	a := NewRecord(2)
	a.Set("M", Number(10))
	a.Set("name", Text("X"))

	b := NewRecord(3)
	b.Set("M", Number(10))
	b.Set("name", Text("X"))

	c := NewRecord(4)
	c.Set("M", Text("10"))
	c.Set("name", Text("X"))

	key := []string{"M", "name"}
	assert.Equal(t, a.KeyString(key), b.KeyString(key))
	assert.NotEqual(t, a.KeyString(key), c.KeyString(key))
	assert.NotEqual(t, a.KeyString([]string{"M", "absent"}), a.KeyString(key))
}

func TestRecord_KeyStringSeparatorInText(t *testing.T) {
	a := NewRecord(2)
	a.Set("A", Text("x\x1fs:y"))
	a.Set("B", Text("z"))

	b := NewRecord(3)
	b.Set("A", Text("x"))
	b.Set("B", Text("y\x1fs:z"))

	c := NewRecord(4)
	c.Set("A", Text("1:x"))

	d := NewRecord(5)
	d.Set("B", Text("x"))

	key := []string{"A", "B"}
	assert.NotEqual(t, a.KeyString(key), b.KeyString(key))
	assert.NotEqual(t, c.KeyString(key), d.KeyString(key))
}

func TestDataset_InsertColumn(t *testing.T) {
	ds := &Dataset{Columns: []string{"A", "B"}}
	for i := 0; i < 3; i++ {
		r := NewRecord(i + 2)
		r.Set("A", Number(float64(i)))
		ds.Records = append(ds.Records, r)
	}

	ds.InsertColumn(0, "ORDRE", func(i int, _ Record) Value { return Number(float64(i + 1)) })
	ds.InsertColumn(99, "AUDIT", nil)
	ds.InsertColumn(1, "ORDRE", nil)

	assert.Equal(t, []string{"ORDRE", "A", "B", "AUDIT"}, ds.Columns)
	assert.Equal(t, "3", ds.Records[2].Get("ORDRE").String())
	assert.True(t, ds.Records[0].Get("AUDIT").IsEmpty())
	assert.Equal(t, []string{"X"}, ds.MissingColumns([]string{"A", "X"}))
}

func TestDataset_CloneAndSelect(t *testing.T) {
	ds := &Dataset{Columns: []string{"A", "B"}}
	r := NewRecord(2)
	r.Set("A", Text("a"))
	r.Set("B", Text("b"))
	ds.Records = append(ds.Records, r)

	c := ds.Clone()
	c.Records[0].Set("A", Text("changed"))
	assert.Equal(t, "a", ds.Records[0].Get("A").String())

	s := ds.Select([]string{"B"})
	require.Len(t, s.Records, 1)
	assert.Equal(t, []string{"B"}, s.Columns)
	assert.True(t, s.Records[0].Get("A").IsEmpty())
	assert.Equal(t, 2, s.Records[0].Line)
	assert.Equal(t, 1, ds.CountMissing("C"))
}

func TestUniqueNames(t *testing.T) {
	assert.Equal(t, []string{"a", "a_2", "col", "a_3", "col_2"}, UniqueNames([]string{"a", "a", "", "a", " "}, "col"))
	assert.Equal(t, []string{"a", "a_2", "a_3"}, UniqueNames([]string{"a", "a_2", "a"}, "col"))
}
