package fetcher

import (
	"reflect"
	"testing"
)

func strp(s string) *string { return &s }

func TestParseExample(t *testing.T) {
	content := `#EXTM3U
#EXTINF:-1 tvg-logo="http://x/a.png" group-title="News",Channel A
http://stream/a.m3u8
#EXTINF:-1,Channel B
http://stream/b.m3u8
`
	got := Parse(content)
	want := []Entry{
		{Name: "Channel A", URL: "http://stream/a.m3u8", Logo: strp("http://x/a.png"), Group: strp("News")},
		{Name: "Channel B", URL: "http://stream/b.m3u8"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse = %+v, want %+v", got, want)
	}
}

func TestParseAttributeOrderIndependent(t *testing.T) {
	a := Parse("#EXTINF:-1 group-title=\"News\" tvg-logo=\"x.png\",Ch1\nhttp://h/1")
	b := Parse("#EXTINF:-1 tvg-logo=\"x.png\" group-title=\"News\",Ch1\nhttp://h/1")
	if len(a) != 1 || !reflect.DeepEqual(a, b) {
		t.Fatalf("entries differ: %+v vs %+v", a, b)
	}
}

func TestParseAttributes(t *testing.T) {
	got := Parse("#EXTINF:-1 tvg-id='bbc.uk' logo='l.png' group='Docs' x-custom=\"1\",BBC\nhttp://h/bbc")
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	e := got[0]
	if e.TvgID == nil || *e.TvgID != "bbc.uk" {
		t.Errorf("TvgID = %v", e.TvgID)
	}
	if e.Logo == nil || *e.Logo != "l.png" {
		t.Errorf("Logo = %v", e.Logo)
	}
	if e.Group == nil || *e.Group != "Docs" {
		t.Errorf("Group = %v", e.Group)
	}
}

func TestParseCommaInsideAttribute(t *testing.T) {
	got := Parse("#EXTINF:-1 group-title=\"News, World\",Channel, One\nhttp://h/1")
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].Name != "Channel, One" {
		t.Errorf("Name = %q", got[0].Name)
	}
	if got[0].Group == nil || *got[0].Group != "News, World" {
		t.Errorf("Group = %v", got[0].Group)
	}
}

func TestParseAttributesAfterTitle(t *testing.T) {
	got := Parse("#EXTINF:-1,Ch tvg-logo=\"x.png\"\nhttp://h/1\n" +
		"#EXTINF:-1 group-title=\"News\",Ch2 group-title=\"Other\" tvg-id=\"c2\"\nhttp://h/2")
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Logo == nil || *got[0].Logo != "x.png" {
		t.Errorf("Logo = %v", got[0].Logo)
	}
	if got[1].Group == nil || *got[1].Group != "News" {
		t.Errorf("Group = %v, want head value", got[1].Group)
	}
	if got[1].TvgID == nil || *got[1].TvgID != "c2" {
		t.Errorf("TvgID = %v", got[1].TvgID)
	}
}

func TestParseEmptyAttributeIsAbsent(t *testing.T) {
	got := Parse("#EXTINF:-1 tvg-logo=\"\" group-title=\"\",Ch\nhttp://h/1")
	if len(got) != 1 || got[0].Logo != nil || got[0].Group != nil {
		t.Fatalf("got %+v", got)
	}
}

func TestParseSkipsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		dropped int
	}{
		{
			name:    "descriptor at end",
			content: "#EXTINF:-1,A\nhttp://h/a\n#EXTINF:-1,B",
			want:    []string{"A"},
			dropped: 1,
		},
		{
			name:    "descriptor followed by descriptor",
			content: "#EXTINF:-1,A\n#EXTINF:-1,B\nhttp://h/b",
			want:    []string{"B"},
			dropped: 1,
		},
		{
			name:    "descriptor followed by comment",
			content: "#EXTINF:-1,A\n#EXTVLCOPT:http-user-agent=x\nhttp://h/a\n#EXTINF:-1,C\nhttp://h/c",
			want:    []string{"C"},
			dropped: 1,
		},
		{
			name:    "empty title",
			content: "#EXTINF:-1,   \nhttp://h/a\n#EXTINF:-1,B\nhttp://h/b",
			want:    []string{"B"},
			dropped: 1,
		},
		{
			name:    "no comma",
			content: "#EXTINF:-1 tvg-id=\"x\"\nhttp://h/a",
			dropped: 1,
		},
		{
			name:    "blank lines and stray urls",
			content: "\n\nhttp://stray\n\n  #EXTINF:-1,A  \n\n  http://h/a  \n",
			want:    []string{"A"},
		},
		{
			name:    "crlf",
			content: "#EXTM3U\r\n#EXTINF:-1,A\r\nhttp://h/a\r\n",
			want:    []string{"A"},
		},
		{
			name:    "garbage",
			content: "not a playlist at all",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, stats := ParseWithStats(tt.content)
			var names []string
			for _, e := range entries {
				names = append(names, e.Name)
			}
			if !reflect.DeepEqual(names, tt.want) {
				t.Errorf("names = %v, want %v", names, tt.want)
			}
			if stats.Dropped != tt.dropped {
				t.Errorf("dropped = %d, want %d", stats.Dropped, tt.dropped)
			}
		})
	}
}

func TestParseTrimsURL(t *testing.T) {
	got := Parse("#EXTINF:-1,A\n   http://h/a   ")
	if len(got) != 1 || got[0].URL != "http://h/a" {
		t.Fatalf("got %+v", got)
	}
}

func TestTitleComma(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"-1,A", 2},
		{`-1 a="x,y",T`, 10},
		{`-1 a='x,y',T`, 10},
		{`-1 a="open,T`, 10},
		{"-1", -1},
	}
	for _, tt := range tests {
		if got := titleComma(tt.in); got != tt.want {
			t.Errorf("titleComma(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
