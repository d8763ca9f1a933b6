package pgsubst

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cybertec-postgresql/pgsubst/pkg/literal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type opaque struct{ n int }

func TestSubstitute(t *testing.T) {
	id := map[string]any{"id": 123}

	tests := []struct {
		name   string
		sql    string
		params map[string]any
		want   string
	}{
		{"none (nil)", "select 123", nil, "select 123"},
		{"none (empty)", "select 123", map[string]any{}, "select 123"},
		{"unbound (nil)", "select * from test where id = :id", nil, "select * from test where id = :id"},
		{"unbound (empty)", "select * from test where id = :id", map[string]any{}, "select * from test where id = :id"},
		{"integer", "select * from test where id = :id", id, "select * from test where id = 123"},
		{"integer (repeated)", "select * from test where id = :id or other_id = :id", id, "select * from test where id = 123 or other_id = 123"},
		{
			"string",
			"select * from test where name = :user_name",
			map[string]any{"id": 123, "user_name": "Jozef Ilyakovic"},
			"select * from test where name = E'Jozef Ilyakovic'",
		},
		{
			"two integers",
			"select * from test where id = :id and height > :height",
			map[string]any{"id": 800, "height": 140},
			"select * from test where id = 800 and height > 140",
		},
		{"in string", "select * from test where id = ':id'", id, "select * from test where id = ':id'"},
		{"in escape string", "select * from test where id = E':id'", id, "select * from test where id = E':id'"},
		{"in escape string (with escapes)", `select * from test where id = E'\':id'`, id, `select * from test where id = E'\':id'`},
		{"in escape string (lowercase prefix)", `select e'\' :id' || :id`, id, `select e'\' :id' || 123`},
		{"typed literal ending in e", `select date'\' , :id`, id, `select date'\' , 123`},
		{"typed literal ending in E", `select TYPE'a\' || :id`, id, `select TYPE'a\' || 123`},
		{"escape string after comma", `select 1,E'\' :id' || :id`, id, `select 1,E'\' :id' || 123`},
		{"in identifier", `select col0, ":id" from test where id = 400`, id, `select col0, ":id" from test where id = 400`},
		{"in identifier (with escape)", `select "a\":id" :id`, id, `select "a\":id" 123`},
		{"comment only (line)", "-- comment", nil, "-- comment"},
		{"comment only (block)", "/* comment */", nil, "/* comment */"},
		{
			"in line comment",
			"select id from test where id = 400; -- :id is 400\nselect :id",
			id,
			"select id from test where id = 400; -- :id is 400\nselect 123",
		},
		{
			"in block comment",
			"select id from test where /* :id */ id = :id;",
			id,
			"select id from test where /* :id */ id = 123;",
		},
		{
			"in nested block comment",
			"select id from test where /* :id /* :id */ :id */ id = :id;",
			id,
			"select id from test where /* :id /* :id */ :id */ id = 123;",
		},
		{"comments of both kinds", "select :id /* :id */ from t -- :id\n", map[string]any{"id": 5}, "select 5 /* :id */ from t -- :id\n"},
		{"doubled quote reopens the literal", "select 'it''s :id' || :id", id, "select 'it''s :id' || 123"},
		{"doubled quote in escape string", "select E'it''s :id', :id", id, "select E'it''s :id', 123"},
		{"cast after placeholder", "select :id::text", id, "select 123::text"},
		{"cast is not a placeholder", "select '1'::id", id, "select '1'::id"},
		{"placeholder at end of input", "select :id", id, "select 123"},
		{"colon at end of input", "select :", id, "select :"},
		{"colon before digit", "select :1id", id, "select :1id"},
		{"quote right after placeholder", "select :id'x :id'", id, "select 123'x :id'"},
		{"quote right after lone colon", "select :'x :id' :id", id, "select :'x :id' 123"},
		{"comment right after placeholder", "select :id--:id\n:id", id, "select 123--:id\n123"},
		{"dollar in name", "select :a$1", map[string]any{"a$1": 7, "a": 1}, "select 7"},
		{"names are case-sensitive", "select :ID, :id", id, "select :ID, 123"},
		{"minus and slash", "select 1-:id, 4/:id", id, "select 1-123, 4/123"},
		{"minus before negative number", "select 1-:x, secret from t", map[string]any{"x": -1}, "select 1- -1, secret from t"},
		{"minus before negative float", "select 2-:x\n", map[string]any{"x": -0.5}, "select 2- -0.5\n"},
		{"minus between placeholders", "select :a-:b", map[string]any{"a": 1, "b": -2}, "select 1- -2"},
		{"minus before string", "select 'a'-:s", map[string]any{"s": "-"}, "select 'a'-E'-'"},
		{"unterminated string", "select ':id", id, "select ':id"},
		{"unterminated comment", "select /* :id", id, "select /* :id"},
		{"multibyte text", "select 'ü' || :name", map[string]any{"name": "ö"}, "select 'ü' || E'ö'"},
		{"null", "update t set x = :x", map[string]any{"x": nil}, "update t set x = NULL"},
		{"array", "select :ids", map[string]any{"ids": []int{1, 2, 3}}, "select ARRAY[1,2,3]"},
		{
			"timestamp",
			"select :at",
			map[string]any{"at": time.Date(1999, 1, 8, 4, 5, 6, 0, time.UTC)},
			"select E'1999-01-08 04:05:06'::timestamp with time zone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Substitute(tt.sql, Bind(tt.params))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubstitute_NestedCommentDepth(t *testing.T) {
	got, err := Substitute("/* a /* b */ :x */ :x", Bindings{"x": literal.Int(1)})
	require.NoError(t, err)
	assert.Equal(t, "/* a /* b */ :x */ 1", got)
}

func TestSubstitute_NilValueIsNull(t *testing.T) {
	got, err := Substitute("select :v", Bindings{"v": nil})
	require.NoError(t, err)
	assert.Equal(t, "select NULL", got)
}

func TestSubstitute_Passthrough(t *testing.T) {
	templates := []string{
		"",
		"select 1",
		"select :a, :b from t where c = :c",
		"select ':a' -- :b\n/* :c /* :d */ */",
		`select "x"":y"`,
		"select :: :1 :",
	}
	for _, tmpl := range templates {
		got, err := Substitute(tmpl, nil)
		require.NoError(t, err)
		assert.Equal(t, tmpl, got)
	}
}

func TestSubstitute_UnsupportedValue(t *testing.T) {
	got, err := Substitute("select :a, :b", Bind(map[string]any{"a": 1, "b": opaque{n: 1}}))
	require.Error(t, err)
	assert.Empty(t, got)
	assert.True(t, errors.Is(err, literal.ErrUnsupportedValueType))
	assert.Contains(t, err.Error(), ":b")

	var typeErr *literal.UnsupportedTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "pgsubst.opaque", typeErr.Type)
}

func TestSubstitute_UnsupportedValueInProtectedText(t *testing.T) {
	// Bindings that are never referenced are never formatted.
	got, err := Substitute("select ':b' -- :b", Bind(map[string]any{"b": opaque{}}))
	require.NoError(t, err)
	assert.Equal(t, "select ':b' -- :b", got)
}

func TestSubstitute_Concurrent(t *testing.T) {
	const tmpl = "select :a, ':a', :b -- :a"
	bindings := Bind(map[string]any{"a": "x'y", "b": []string{"p", "q"}})
	want, err := Substitute(tmpl, bindings)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Substitute(tmpl, bindings)
			if err != nil {
				results <- err.Error()
				return
			}
			results <- got
		}()
	}
	wg.Wait()
	close(results)

	for got := range results {
		assert.Equal(t, want, got)
	}
}

func TestSubstituteReader(t *testing.T) {
	var out bytes.Buffer
	err := SubstituteReader(strings.NewReader("select :id"), &out, Bind(map[string]any{"id": 1}))
	require.NoError(t, err)
	assert.Equal(t, "select 1", out.String())
}

func TestSubstituteReader_InvalidArgument(t *testing.T) {
	var out bytes.Buffer
	err := SubstituteReader(nil, &out, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = SubstituteReader(strings.NewReader("select 1"), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSubstituteReader_NoPartialOutput(t *testing.T) {
	var out bytes.Buffer
	err := SubstituteReader(strings.NewReader("select :a, :b"), &out, Bind(map[string]any{"a": 1, "b": opaque{}}))
	assert.ErrorIs(t, err, literal.ErrUnsupportedValueType)
	assert.Zero(t, out.Len())
}

func TestFormat(t *testing.T) {
	got, err := Format(123)
	require.NoError(t, err)
	assert.Equal(t, "123", got)

	got, err = Format([]any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "ARRAY[E'a',E'b']", got)

	_, err = Format(opaque{})
	assert.ErrorIs(t, err, literal.ErrUnsupportedValueType)
}

func TestPlaceholders(t *testing.T) {
	tmpl := "select :a, :b, :a, ':c', \":d\" /* :e */ :f::int -- :g\n, :h"
	assert.Equal(t, []string{"a", "b", "f", "h"}, Placeholders(tmpl))
	assert.Empty(t, Placeholders("select 1"))
}

func TestMissing(t *testing.T) {
	tmpl := "select :a, :b, :c"
	assert.Equal(t, []string{"b", "c"}, Missing(tmpl, Bind(map[string]any{"a": 1})))
	assert.Equal(t, []string{"a", "b", "c"}, Missing(tmpl, nil))
	assert.Empty(t, Missing(tmpl, Bind(map[string]any{"a": 1, "b": 2, "c": 3})))
}
