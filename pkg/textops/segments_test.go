package textops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentsAndParts(t *testing.T) {
	path := "/var/www/mysite.com/web/uploads/"

	assert.Equal(t, []string{"var", "www", "mysite.com", "web", "uploads"}, Segments(path, "/"))
	assert.Equal(t, []string{"", "var", "www", "mysite.com", "web", "uploads", ""}, Parts(path, "/"))
}

func TestSegmentByIndex(t *testing.T) {
	path := "/var/www/mysite.com/web/uploads"

	domain, ok := Segment(path, "/", 2)
	require.True(t, ok)
	assert.Equal(t, "mysite.com", domain)

	part, ok := Part(path, "/", 2)
	require.True(t, ok)
	assert.Equal(t, "www", part)

	last, ok := Segment(path, "/", -1)
	require.True(t, ok)
	assert.Equal(t, "uploads", last)

	_, ok = Segment(path, "/", 9)
	assert.False(t, ok)
	_, ok = Part(path, "/", -9)
	assert.False(t, ok)
}

func TestInnerSegment(t *testing.T) {
	got, ok := InnerSegment("long/path/with-a-long-title/details", SegmentIndex{"/", 2}, SegmentIndex{"-", 2})
	require.True(t, ok)
	assert.Equal(t, "long", got)

	got, ok = InnerSegment("complex/pattern/with-many-nested|embedded-words",
		SegmentIndex{"/", 2}, SegmentIndex{"-", 2}, SegmentIndex{"|", 1})
	require.True(t, ok)
	assert.Equal(t, "embedded", got)

	year, ok := InnerSegment("pictures/holiday-france-1983/originals", SegmentIndex{"/", 1}, SegmentIndex{"-", 2})
	require.True(t, ok)
	assert.Equal(t, "1983", year)

	_, ok = InnerSegment("a/b", SegmentIndex{"/", 5}, SegmentIndex{"-", 0})
	assert.False(t, ok)

	_, ok = InnerSegment("a/b")
	assert.False(t, ok)
}

func TestFirstAndLast(t *testing.T) {
	assert.Equal(t, "path", First("/path/with/a/leading/slash", "/"))
	assert.Equal(t, "path", First("path/without/a/leading/slash", "/"))
	assert.Equal(t, "slash", Last("/path/with/a/trailing/slash/", "/"))
	assert.Equal(t, "slash", Last("/path/without/a/trailing/slash", "/"))

	assert.Equal(t, "with/a/leading/slash", RemainderEnd("/path/with/a/leading/slash", "/"))
	assert.Equal(t, "/path/with/a/trailing", RemainderStart("/path/with/a/trailing/slash/", "/"))
}

func TestHeadTailStartEnd(t *testing.T) {
	s := "comma,separated,string"

	head, tail := HeadTail(s, ",")
	assert.Equal(t, "comma", head)
	assert.Equal(t, "separated,string", tail)
	assert.Equal(t, "comma", Head(s, ","))
	assert.Equal(t, "separated,string", Tail(s, ","))
	assert.Equal(t, "string", End(s, ","))

	start, end := StartEnd(s, ",")
	assert.Equal(t, "comma,separated", start)
	assert.Equal(t, "string", end)
	assert.Equal(t, "comma,separated", Start(s, ","))

	start, end = StartEnd("one-item", ",")
	assert.Equal(t, "one-item", start)
	assert.Equal(t, "", end)

	head, tail = HeadTail("one-item", ",")
	assert.Equal(t, "", head)
	assert.Equal(t, "one-item", tail)
	assert.Equal(t, "one-item", Head("one-item", ","))
	assert.Equal(t, "", Tail("one-item", ","))
}

func TestSplitOnAnyChar(t *testing.T) {
	assert.Equal(t, []string{"jazz", "and", "blues", "music", "section"},
		SplitOnAnyChar("jazz-and-blues_music/section", '-', '_', '/'))
	assert.Equal(t, []string{"classical", "music"}, SplitOnAnyChar("classical music", '-', '_', ' '))
	assert.Equal(t, []string{"plain"}, SplitOnAnyChar("plain", '-'))
	assert.Equal(t, []string{"", "a", ""}, SplitOnAnyChar("-a-", '-'))
	assert.Equal(t, []string{"über", "straße"}, SplitOnAnyChar("über→straße", '→'))
}

func TestAnyCharHeadTail(t *testing.T) {
	// The first separator in the list that occurs wins, not the first in the text.
	head, tail := HeadTailOnAnyChar("a_b-c_d", '-', '_')
	assert.Equal(t, "a_b", head)
	assert.Equal(t, "c_d", tail)

	start, end := StartEndOnAnyChar("a_b-c_d", '_', '-')
	assert.Equal(t, "a_b-c", start)
	assert.Equal(t, "d", end)

	head, tail = HeadTailOnAnyChar("abc", '-')
	assert.Equal(t, "", head)
	assert.Equal(t, "abc", tail)

	start, end = StartEndOnAnyChar("abc", '-')
	assert.Equal(t, "abc", start)
	assert.Equal(t, "", end)
}
