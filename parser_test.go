// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jnode_test

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/creachadair/jnode"
	"github.com/google/go-cmp/cmp"
)

// A member is an object member, for comparison of parsed trees.
type member struct {
	Key   string
	Value any
}

// toGo converts n into plain Go values that can be compared with cmp.
// Objects become []member so that the order of members is checked.
func toGo(n *jnode.Node) any {
	switch n.Type() {
	case jnode.ObjectNode:
		out := []member{}
		for key, val := range n.All() {
			out = append(out, member{Key: key.Text(), Value: toGo(val)})
		}
		return out
	case jnode.ArrayNode:
		out := []any{}
		for _, val := range n.All() {
			out = append(out, toGo(val))
		}
		return out
	case jnode.StringNode:
		return n.GetString().Text()
	case jnode.IntegerNode:
		return n.Integer()
	case jnode.DoubleNode:
		return n.Double()
	case jnode.BooleanNode:
		return n.Bool()
	case jnode.NullNode:
		return nil
	default:
		return fmt.Sprintf("<%s>", n.Type())
	}
}

func mustParse(t *testing.T, input string) *jnode.Node {
	t.Helper()
	root, err := jnode.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse %#q: unexpected error: %v", input, err)
	}
	return root
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{`{}`, []member{}},
		{`[]`, []any{}},
		{"{ \t\r\n }", []member{}},
		{"[ \n ]  \n\t", []any{}},

		{`[1, 2.5, true, false, null, "x"]`, []any{
			int64(1), 2.5, true, false, nil, "x",
		}},
		{`{"a":15}`, []member{{"a", int64(15)}}},
		{`{"x":null, "y":[true]}`, []member{
			{"x", nil},
			{"y", []any{true}},
		}},
		{`{"b": 2, "a": 1, "b": 3}`, []member{
			{"b", int64(2)}, {"a", int64(1)}, {"b", int64(3)},
		}},
		{`[[], {}, [[]], {"": {"": []}}]`, []any{
			[]any{}, []member{}, []any{[]any{}},
			[]member{{"", []member{{"", []any{}}}}},
		}},
		{`{
  "list": [{"x": 1}, {"x": 2}],
  "y": {"hello": "there"},
  "xyz": {"p": true, "d": -0.25, "q": false}
}`, []member{
			{"list", []any{
				[]member{{"x", int64(1)}},
				[]member{{"x", int64(2)}},
			}},
			{"y", []member{{"hello", "there"}}},
			{"xyz", []member{{"p", true}, {"d", -0.25}, {"q", false}}},
		}},
	}
	for _, tc := range tests {
		root := mustParse(t, tc.input)
		if diff := cmp.Diff(tc.want, toGo(root)); diff != "" {
			t.Errorf("Input: %#q\nTree: (-want, +got)\n%s", tc.input, diff)
		}
	}
}

func TestScalarTypes(t *testing.T) {
	root := mustParse(t, `[1, 2.5, true, false, null, "x"]`)
	if got := root.Type(); got != jnode.ArrayNode {
		t.Fatalf("Root type: got %v, want %v", got, jnode.ArrayNode)
	}
	if got := root.Len(); got != 6 {
		t.Fatalf("Root length: got %d, want 6", got)
	}
	want := []jnode.Type{
		jnode.IntegerNode, jnode.DoubleNode, jnode.BooleanNode,
		jnode.BooleanNode, jnode.NullNode, jnode.StringNode,
	}
	var got []jnode.Type
	for _, val := range root.All() {
		got = append(got, val.Type())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Element types (-want, +got):\n%s", diff)
	}
}

func TestManyMembers(t *testing.T) {
	// More members and elements than fit in the initial key and child slots.
	const n = 1000

	var obj, arr strings.Builder
	var want []member
	var wantArr []any
	obj.WriteString("{")
	arr.WriteString("[")
	for i := range n {
		if i > 0 {
			obj.WriteString(", ")
			arr.WriteString(",")
		}
		key := fmt.Sprintf("key%d", i)
		fmt.Fprintf(&obj, "%q: %d", key, i)
		fmt.Fprintf(&arr, "%d", i)
		want = append(want, member{key, int64(i)})
		wantArr = append(wantArr, int64(i))
	}
	obj.WriteString("}")
	arr.WriteString("]")

	if diff := cmp.Diff(want, toGo(mustParse(t, obj.String()))); diff != "" {
		t.Errorf("Object (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantArr, toGo(mustParse(t, arr.String()))); diff != "" {
		t.Errorf("Array (-want, +got):\n%s", diff)
	}
}

func TestNullAndFalseMembers(t *testing.T) {
	root := mustParse(t, `{"a": null, "b": false, "c": [null, false, null], "d": [false]}`)
	if got := root.Len(); got != 4 {
		t.Errorf("Object length: got %d, want 4", got)
	}
	if got := root.Find("c").Len(); got != 3 {
		t.Errorf("Array c length: got %d, want 3", got)
	}
	if got := root.Find("d").Len(); got != 1 {
		t.Errorf("Array d length: got %d, want 1", got)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input string
		want  []byte
	}{
		{`[""]`, nil},
		{`["a b c"]`, []byte("a b c")},
		{`["line\nbreak"]`, []byte("line\nbreak")},
		{`["\b\f\n\r\t"]`, []byte("\b\f\n\r\t")},
		{`["\"\\\/"]`, []byte(`"\/`)},
		{`["\u0041"]`, []byte{0x00, 0x41}},
		{`["x\u00e9y"]`, []byte{'x', 0x00, 0xe9, 'y'}},
		{`["\ud83d\ude00"]`, []byte{0xd8, 0x3d, 0xde, 0x00}},
		{`["\q"]`, []byte("q")},
		{"[\"caf\u00e9\"]", []byte("caf\u00e9")},
	}
	for _, tc := range tests {
		root := mustParse(t, tc.input)
		s := root.Index(0).GetString()
		if s == nil {
			t.Errorf("Input %#q: no string value", tc.input)
			continue
		}
		if diff := cmp.Diff(tc.want, s.Bytes()); diff != "" {
			t.Errorf("Input %#q: (-want, +got)\n%s", tc.input, diff)
		}

		// The stored data carries a trailing terminator.
		data := s.Data()
		if data.Len() != len(tc.want)+1 || data.At(data.Len()-1) != 0 {
			t.Errorf("Input %#q: data %q lacks terminator", tc.input, data.StringCopy())
		}
	}
}

func TestNewlineEscape(t *testing.T) {
	root := mustParse(t, `{"text": "line\nbreak"}`)
	got := root.Find("text").GetString().Text()
	if strings.Count(got, "\n") != 1 || strings.Contains(got, `\n`) {
		t.Errorf("Decoded %q, want one literal newline", got)
	}
}

func TestDecodeUTF8(t *testing.T) {
	p := jnode.NewParser()
	p.DecodeUTF8(true)

	tests := []struct {
		input, want string
	}{
		{`["\u0041"]`, "A"},
		{`["\u00e9t\u00e9"]`, "\u00e9t\u00e9"},
		{`["\ud83d\ude00!"]`, "\U0001f600!"},
		{`["\ud83dx"]`, "\ufffdx"},      // unpaired high surrogate
		{`["\ude00"]`, "\ufffd"},        // unpaired low surrogate
		{`["\ud83d\u0041"]`, "\ufffdA"}, // high surrogate followed by a non-surrogate
		{`["\ud83d\ud83d\ude00"]`, "\ufffd\U0001f600"},
	}
	for _, tc := range tests {
		root, err := p.Parse([]byte(tc.input))
		if err != nil {
			t.Errorf("Parse %#q: unexpected error: %v", tc.input, err)
			continue
		}
		if got := root.Index(0).GetString().Text(); got != tc.want {
			t.Errorf("Parse %#q: got %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"0", int64(0)},
		{"-0", int64(0)},
		{"17", int64(17)},
		{"-250", int64(-250)},
		{"9223372036854775807", int64(math.MaxInt64)},
		{"-9223372036854775808", int64(math.MinInt64)},

		// Out-of-range integers saturate.
		{"9223372036854775808", int64(math.MaxInt64)},
		{"-99999999999999999999", int64(math.MinInt64)},

		{"0.5", 0.5},
		{"-6.32", -6.32},
		{"1e3", 1000.0},
		{"2E-2", 0.02},
		{"0.1e+2", 10.0},
		{"1e400", math.Inf(1)},
		{"-1e400", math.Inf(-1)},
	}
	for _, tc := range tests {
		root := mustParse(t, "["+tc.input+"]")
		if diff := cmp.Diff(tc.want, toGo(root.Index(0))); diff != "" {
			t.Errorf("Number %s: (-want, +got)\n%s", tc.input, diff)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		// Documents
		{"", jnode.ErrUnexpectedEnd},
		{"not json", jnode.ErrInvalidTree},
		{`"string"`, jnode.ErrInvalidTree},
		{`15`, jnode.ErrInvalidTree},
		{" {}", jnode.ErrInvalidTree},
		{`[1] x`, jnode.ErrTrailingData},
		{`{}{}`, jnode.ErrTrailingData},

		// Objects
		{`{`, jnode.ErrUnexpectedEnd},
		{`{"a"`, jnode.ErrUnexpectedEnd},
		{`{"a":`, jnode.ErrUnexpectedEnd},
		{`{"a":1`, jnode.ErrUnexpectedEnd},
		{`{"a": }`, jnode.ErrExpectedValue},
		{`{"a": ]}`, jnode.ErrExpectedValue},
		{`{a: 1}`, jnode.ErrInvalidString},
		{`{"a" 1}`, jnode.ErrInvalidObject},
		{`{"a": 1 "b": 2}`, jnode.ErrInvalidObject},
		{`{"a": 1,}`, jnode.ErrInvalidObject},
		{`{"a": 1]`, jnode.ErrInvalidObject},
		{`{,}`, jnode.ErrInvalidString},

		// Arrays
		{`[`, jnode.ErrUnexpectedEnd},
		{`[15,`, jnode.ErrUnexpectedEnd},
		{`[1 2]`, jnode.ErrInvalidArray},
		{`[1,]`, jnode.ErrInvalidArray},
		{`[1,,2]`, jnode.ErrExpectedValue},
		{`[,1]`, jnode.ErrExpectedValue},
		{`[x]`, jnode.ErrExpectedValue},
		{`[1}`, jnode.ErrInvalidArray},

		// Literals
		{`[tru]`, jnode.ErrInvalidBoolean},
		{`[trUe]`, jnode.ErrInvalidBoolean},
		{`[fals]`, jnode.ErrInvalidBoolean},
		{`[tr`, jnode.ErrUnexpectedEnd},
		{`[nul]`, jnode.ErrInvalidNull},
		{`[nil]`, jnode.ErrInvalidNull},
		{`[nu`, jnode.ErrUnexpectedEnd},

		// Numbers
		{`[-]`, jnode.ErrInvalidNumber},
		{`[01]`, jnode.ErrInvalidNumber},
		{`[-01.5]`, jnode.ErrInvalidNumber},
		{`[1.]`, jnode.ErrInvalidNumber},
		{`[1.2.3]`, jnode.ErrInvalidNumber},
		{`[1e]`, jnode.ErrInvalidNumber},
		{`[1e+]`, jnode.ErrInvalidNumber},
		{`[1-2]`, jnode.ErrInvalidNumber},

		// Strings
		{`["abc`, jnode.ErrUnexpectedEnd},
		{`["abc\"]`, jnode.ErrUnexpectedEnd},
		{`["\u00`, jnode.ErrUnexpectedEnd},
		{`["\u00zz"]`, jnode.ErrInvalidUnicode},
		{`["\u"]`, jnode.ErrInvalidUnicode},
		{`["\u00"]`, jnode.ErrInvalidUnicode},
		{`["\u12`, jnode.ErrUnexpectedEnd},
	}
	for _, tc := range tests {
		root, err := jnode.Parse([]byte(tc.input))
		if !errors.Is(err, tc.want) {
			t.Errorf("Parse %#q: got error %v, want %v", tc.input, err, tc.want)
			continue
		}
		if root != nil {
			t.Errorf("Parse %#q: got tree %v, want nil", tc.input, root)
		}
		var serr *jnode.SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("Parse %#q: error is %T, not *SyntaxError", tc.input, err)
		} else if serr.Offset < 0 || serr.Offset > len(tc.input) {
			t.Errorf("Parse %#q: offset %d out of range", tc.input, serr.Offset)
		}
	}
}

func TestSyntaxErrorLocation(t *testing.T) {
	const input = "{\n  \"a\": }"
	_, err := jnode.Parse([]byte(input))
	var serr *jnode.SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("Parse: got %v, want *SyntaxError", err)
	}
	if serr.Offset != 9 {
		t.Errorf("Offset: got %d, want 9", serr.Offset)
	}
	if diff := cmp.Diff(jnode.LineCol{Line: 2, Column: 7}, serr.Location); diff != "" {
		t.Errorf("Location (-want, +got):\n%s", diff)
	}
	if got, want := err.Error(), `at 2:7: expected value: got '}'`; got != want {
		t.Errorf("Error: got %q, want %q", got, want)
	}
}

func TestParseTree(t *testing.T) {
	tree := jnode.NewTree()
	if got := tree.Type(); got != jnode.Unknown {
		t.Errorf("New tree type: got %v, want %v", got, jnode.Unknown)
	}
	if err := jnode.ParseTree(tree, []byte(`{"ok": true}`)); err != nil {
		t.Fatalf("ParseTree: unexpected error: %v", err)
	}
	if !tree.Find("ok").Bool() {
		t.Error(`Member "ok" is not true`)
	}

	// A tree is populated only once.
	if err := jnode.ParseTree(tree, []byte(`[]`)); !errors.Is(err, jnode.ErrInvalidNode) {
		t.Errorf("ParseTree again: got %v, want %v", err, jnode.ErrInvalidNode)
	}
	if err := jnode.ParseTree(nil, []byte(`[]`)); !errors.Is(err, jnode.ErrInvalidNode) {
		t.Errorf("ParseTree nil: got %v, want %v", err, jnode.ErrInvalidNode)
	}
}

func TestTrailingCommas(t *testing.T) {
	p := jnode.NewParser()
	p.AllowTrailingCommas(true)

	root, err := p.Parse([]byte(`{"a": [1, 2,], "b": {"c": null,},}`))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	want := []member{
		{"a", []any{int64(1), int64(2)}},
		{"b", []member{{"c", nil}}},
	}
	if diff := cmp.Diff(want, toGo(root)); diff != "" {
		t.Errorf("Tree (-want, +got):\n%s", diff)
	}

	// Elements are still required between commas.
	for _, bad := range []string{`[1,,]`, `[,]`, `{,}`} {
		if _, err := p.Parse([]byte(bad)); err == nil {
			t.Errorf("Parse %#q: got nil, want error", bad)
		}
	}
}

func TestComments(t *testing.T) {
	const input = `// Leading comment.
{
  "name": "jnode", /* inline */
  "tags": [
    "json",
    "tree", // trailing comma follows
  ],
}
`
	if _, err := jnode.Parse([]byte(input)); err == nil {
		t.Error("Parse with comments disabled: got nil, want error")
	}

	p := jnode.NewParser()
	p.AllowComments(true)
	root, err := p.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	want := []member{
		{"name", "jnode"},
		{"tags", []any{"json", "tree"}},
	}
	if diff := cmp.Diff(want, toGo(root)); diff != "" {
		t.Errorf("Tree (-want, +got):\n%s", diff)
	}

	if _, err := p.Parse([]byte(`{"a": 1 /* unterminated`)); err == nil {
		t.Error("Parse unterminated comment: got nil, want error")
	}
}

func TestCommentErrors(t *testing.T) {
	p := jnode.NewParser()
	p.AllowComments(true)

	tests := []struct {
		input  string
		want   error
		offset int // -1 to skip the check
	}{
		// Errors in the JSON text keep their own kind and location.
		{`{"a": }`, jnode.ErrExpectedValue, 6},
		{`[tru]`, jnode.ErrInvalidBoolean, 1},
		{"// note\n{\"a\": 1, \"b\": nul}", jnode.ErrInvalidNull, 22},
		{`[1, /* c */ 2 3]`, jnode.ErrInvalidArray, 14},
		{`[1 / 2]`, jnode.ErrInvalidArray, 3},
		{`{"a": 1 /* unterminated`, jnode.ErrUnexpectedEnd, -1},

		// Errors in comments are reported as such.
		{`[1] /* unterminated`, jnode.ErrInvalidComment, -1},
		{"[1 /* \xff */]", jnode.ErrInvalidComment, -1},
	}
	for _, tc := range tests {
		root, err := p.Parse([]byte(tc.input))
		if !errors.Is(err, tc.want) {
			t.Errorf("Parse %#q: got error %v, want %v", tc.input, err, tc.want)
			continue
		}
		if root != nil {
			t.Errorf("Parse %#q: got tree %v, want nil", tc.input, root)
		}
		var serr *jnode.SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("Parse %#q: error is %T, not *SyntaxError", tc.input, err)
			continue
		}
		if tc.offset >= 0 && serr.Offset != tc.offset {
			t.Errorf("Parse %#q: offset %d, want %d", tc.input, serr.Offset, tc.offset)
		}
		if pfx := tc.want.Error() + ": "; !strings.HasPrefix(serr.Message, pfx) {
			t.Errorf("Parse %#q: message %q lacks prefix %q", tc.input, serr.Message, pfx)
		}
	}
}

func TestShortUnicodeEscape(t *testing.T) {
	p := jnode.NewParser()
	p.DecodeUTF8(true)

	// The low half of a surrogate pair is checked like any other escape.
	for _, input := range []string{`["\ud83d\u"]`, `["\ud83d\u00"]`} {
		if _, err := p.Parse([]byte(input)); !errors.Is(err, jnode.ErrInvalidUnicode) {
			t.Errorf("Parse %#q: got %v, want %v", input, err, jnode.ErrInvalidUnicode)
		}
	}
	if _, err := p.Parse([]byte(`["\ud83d\ude`)); !errors.Is(err, jnode.ErrUnexpectedEnd) {
		t.Errorf("Parse truncated pair: got %v, want %v", err, jnode.ErrUnexpectedEnd)
	}
}

func TestLimits(t *testing.T) {
	nested := func(n int) string {
		return strings.Repeat("[", n) + strings.Repeat("]", n)
	}
	tests := []struct {
		name  string
		setup func(*jnode.Parser)
		input string
		want  error
	}{
		{"DepthDefaultOK", nil, nested(jnode.DefaultMaxDepth), nil},
		{"DepthDefault", nil, nested(jnode.DefaultMaxDepth + 1), jnode.ErrTooDeep},
		{"DepthOK", func(p *jnode.Parser) { p.MaxDepth(3) }, `[{"a":[1]}]`, nil},
		{"Depth", func(p *jnode.Parser) { p.MaxDepth(3) }, `[{"a":[[]]}]`, jnode.ErrTooDeep},

		{"NodesOK", func(p *jnode.Parser) { p.MaxNodes(3) }, `[1, 2]`, nil},
		{"Nodes", func(p *jnode.Parser) { p.MaxNodes(3) }, `[1, 2, 3]`, jnode.ErrCapacity},

		{"StringOK", func(p *jnode.Parser) { p.MaxStringLength(3) }, `{"abc": "xyz"}`, nil},
		{"StringValue", func(p *jnode.Parser) { p.MaxStringLength(3) }, `["abcd"]`, jnode.ErrCapacity},
		{"StringKey", func(p *jnode.Parser) { p.MaxStringLength(3) }, `{"abcd": 1}`, jnode.ErrCapacity},
		{"StringEscape", func(p *jnode.Parser) { p.MaxStringLength(3) }, `["a\u0041"]`, nil},
		{"StringEscapeLong", func(p *jnode.Parser) { p.MaxStringLength(3) }, `["ab\u0041"]`, jnode.ErrCapacity},

		{"MembersOK", func(p *jnode.Parser) { p.MaxMembers(2) }, `{"a": 1, "b": {"c": 2, "d": 3}}`, nil},
		{"Members", func(p *jnode.Parser) { p.MaxMembers(2) }, `{"a": 1, "b": 2, "c": 3}`, jnode.ErrCapacity},

		{"InputOK", func(p *jnode.Parser) { p.MaxInputSize(5) }, `[1,2]`, nil},
		{"Input", func(p *jnode.Parser) { p.MaxInputSize(4) }, `[1,2]`, jnode.ErrCapacity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := jnode.NewParser()
			if tc.setup != nil {
				tc.setup(p)
			}
			_, err := p.Parse([]byte(tc.input))
			if tc.want == nil && err != nil {
				t.Errorf("Parse: unexpected error: %v", err)
			} else if !errors.Is(err, tc.want) {
				t.Errorf("Parse: got error %v, want %v", err, tc.want)
			}
		})
	}
}

func TestZeroParser(t *testing.T) {
	var p jnode.Parser
	if _, err := p.Parse([]byte(`[[[]]]`)); err != nil {
		t.Errorf("Parse: unexpected error: %v", err)
	}
	deep := strings.Repeat("[", jnode.DefaultMaxDepth+1)
	if _, err := p.Parse([]byte(deep)); !errors.Is(err, jnode.ErrTooDeep) {
		t.Errorf("Parse deep: got %v, want %v", err, jnode.ErrTooDeep)
	}
}
