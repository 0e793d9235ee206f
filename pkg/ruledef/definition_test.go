package ruledef

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/strbounds/pkg/rules"
)

var animalFiles = []string{
	"_Cat image.jpg",
	"-dog picture.png",
	"_DOG pc.jpg",
	"elephant image.psd",
	"CAT_Video.mp4",
	"lion Picture.jpg",
}

const animalsJSON = `{
  "all": [
    {"any": [
      {"starts_with": "cat", "case": "ci_alphanum"},
      {"starts_with": "dog", "case": "ci_alphanum"}
    ]},
    {"ends_with": ".jpg", "case": "ci"}
  ]
}`

const animalsYAML = `
all:
  - any:
      - starts_with: cat
        case: ci_alphanum
      - starts_with: dog
        case: ci_alphanum
  - ends_with: .jpg
    case: ci
`

const animalsTOML = `
[[all]]
any = [
  { starts_with = "cat", case = "ci_alphanum" },
  { starts_with = "dog", case = "ci_alphanum" },
]

[[all]]
ends_with = ".jpg"
case = "ci"
`

func TestParse_Formats(t *testing.T) {
	want := rules.Build().OrStartingWithCIAlphanum("cat", "dog").EndingWithCI(".jpg").Node()

	for _, tt := range []struct {
		format Format
		data   string
	}{
		{FormatJSON, animalsJSON},
		{FormatYAML, animalsYAML},
		{FormatTOML, animalsTOML},
	} {
		t.Run(string(tt.format), func(t *testing.T) {
			d, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)

			n, err := d.Node(0)
			require.NoError(t, err)
			assert.True(t, n.Equal(want), "got %v, want %v", n, want)
			assert.Equal(t, []string{"_Cat image.jpg", "_DOG pc.jpg"}, rules.FilterAll(animalFiles, n))
		})
	}
}

func TestParse_BareList(t *testing.T) {
	jsonDef, err := ParseJSON([]byte(` [{"contains": "nepal", "case": "ci"}, {"ends_with": ".psd", "case": "ci", "not": true}]`))
	require.NoError(t, err)
	yamlDef, err := ParseYAML([]byte("- contains: nepal\n  case: ci\n- ends_with: .psd\n  case: ci\n  not: true\n"))
	require.NoError(t, err)

	want := rules.Build().ContainingCI("nepal").NotEndingWithCI(".psd").Node()
	for _, d := range []Definition{jsonDef, yamlDef} {
		n, err := d.Node(0)
		require.NoError(t, err)
		assert.True(t, n.Equal(want), "got %v, want %v", n, want)
	}
}

func TestDefinition_EmptyValues(t *testing.T) {
	d, err := ParseJSON([]byte(`{"any": []}`))
	require.NoError(t, err)
	n, err := d.Node(0)
	require.NoError(t, err)
	assert.Equal(t, rules.KindAny, n.Kind())
	assert.False(t, n.Match("x"))

	d, err = ParseJSON([]byte(`{"is": ""}`))
	require.NoError(t, err)
	n, err = d.Node(0)
	require.NoError(t, err)
	assert.True(t, n.Match(""))
	assert.False(t, n.Match("x"))
}

func TestDefinition_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"no kind", `{"case": "ci"}`, ErrInvalidDefinition},
		{"two kinds", `{"contains": "a", "is": "b"}`, ErrInvalidDefinition},
		{"case on group", `{"all": [], "case": "ci"}`, ErrInvalidDefinition},
		{"nested invalid", `{"all": [{"any": [{}]}]}`, ErrInvalidDefinition},
		{"bad case", `{"contains": "a", "case": "loose"}`, rules.ErrInvalidCaseMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseJSON([]byte(tt.data))
			require.NoError(t, err)
			_, err = d.Node(0)
			assert.True(t, errors.Is(err, tt.want), "error = %v, want %v", err, tt.want)
		})
	}

	_, err := ParseJSON([]byte(`{"contains": "a", "near": 3}`))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Parse([]byte(`{}`), "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParse_TrailingContent(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"second JSON object", `{"contains":"a"} {"contains":"b"}`, FormatJSON},
		{"JSON after list", `[{"contains":"a"}] [{"contains":"b"}]`, FormatJSON},
		{"stray JSON brace", `{"contains":"a"} }`, FormatJSON},
		{"second YAML document", "contains: a\n---\ncontains: b\n", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			assert.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}

	d, err := ParseJSON([]byte("{\"contains\":\"a\"}\n\n"))
	require.NoError(t, err, "trailing whitespace is allowed")
	n, err := d.Node(0)
	require.NoError(t, err)
	assert.True(t, n.Match("cat"))
}

func TestDefinition_ErrorPath(t *testing.T) {
	d, err := ParseJSON([]byte(`{"all": [{"contains": "a"}, {"any": [{"is": "x"}, {}]}]}`))
	require.NoError(t, err)
	_, err = d.Node(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.all[1].any[1]")
}

func TestDefinition_MaxDepth(t *testing.T) {
	leaf := "x"
	d := Definition{Contains: &leaf}
	for i := 0; i < 5; i++ {
		d = Definition{All: &[]Definition{d}}
	}

	_, err := d.Node(6)
	assert.NoError(t, err)
	_, err = d.Node(5)
	assert.ErrorIs(t, err, rules.ErrRuleTooDeep)
}

func TestMarshalJSON_RoundTrip(t *testing.T) {
	n := rules.Build().
		And(rules.Build().StartingWithCIAlphanum("cat").EndingWithCI(".jpg").Node()).
		Or(rules.Any()).
		NotIsCS("").
		Node()

	data, err := MarshalJSON(n)
	require.NoError(t, err)

	d, err := ParseJSON(data)
	require.NoError(t, err)
	back, err := d.Node(0)
	require.NoError(t, err)
	assert.True(t, back.Equal(n), "round trip = %v, want %v", back, n)
}

func TestFromNode_PreservesEvaluation(t *testing.T) {
	patterns := []string{"", "a", "B", "cat", "-x"}
	alphabet := []rune("aAbBcCtx-")
	r := rand.New(rand.NewSource(7))

	var tree func(depth int) rules.Node
	tree = func(depth int) rules.Node {
		if depth == 0 || r.Intn(3) == 0 {
			return rules.Leaf(rules.Condition{
				Anchor:   rules.Anchor(r.Intn(4)),
				Pattern:  patterns[r.Intn(len(patterns))],
				Positive: r.Intn(2) == 0,
				Mode:     rules.CaseMode(r.Intn(3)),
			})
		}
		children := make([]rules.Node, r.Intn(4))
		for i := range children {
			children[i] = tree(depth - 1)
		}
		if r.Intn(2) == 0 {
			return rules.Any(children...)
		}
		return rules.All(children...)
	}

	for i := 0; i < 200; i++ {
		n := tree(4)
		back, err := FromNode(n).Node(0)
		require.NoError(t, err)

		candidate := make([]rune, r.Intn(6))
		for j := range candidate {
			candidate[j] = alphabet[r.Intn(len(alphabet))]
		}
		c := string(candidate)
		assert.Equal(t, rules.Evaluate(n, c), rules.Evaluate(back, c), "tree %v on %q", n, c)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{
		"animals.json": animalsJSON,
		"animals.yml":  animalsYAML,
		"animals.toml": animalsTOML,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		n, err := LoadNode(path, 0)
		require.NoError(t, err, name)
		assert.Equal(t, 2, n.Len(), name)
	}

	_, err := LoadFile(filepath.Join(dir, "animals.ini"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
