// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestKindFromHint(t *testing.T) {
	tests := []struct {
		hint string
		want FormatKind
	}{
		{".html", HTML},
		{"page.HTM", HTML},
		{"xhtml", HTML},
		{"feed.xml", XML},
		{"XML", XML},
		{"directives/report.PDF", PDF},
		{"pdf", PDF},
		{"memo.docx", DOCX},
		{"book.xlsx", Spreadsheet},
		{"macro.xlsm", Spreadsheet},
		{"legacy.xls", Spreadsheet},
		{"scan.png", Image},
		{"photo.JPEG", Image},
		{"fax.tiff", Image},
		{"notes.txt", PlainText},
		{"data.csv", PlainText},
		{"", PlainText},
		{"dir/README", PlainText},
		{"archive.tar.gz", PlainText},
	}
	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			if got := KindFromHint(tt.hint); got != tt.want {
				t.Errorf("KindFromHint(%q) = %v, want %v", tt.hint, got, tt.want)
			}
		})
	}
}

func TestHandlers_EveryKindRegistered(t *testing.T) {
	for k := FormatKind(0); k < numFormatKinds; k++ {
		if handlers[k].fn == nil {
			t.Errorf("no handler for %v", k)
		}
		if formatNames[k] == "" {
			t.Errorf("no name for kind %d", k)
		}
	}
}

func TestExtract_PlainText(t *testing.T) {
	e := New(Options{})
	tests := []struct {
		name    string
		hint    string
		content string
		want    string
	}{
		{"round trip", "notes.txt", "line one\n  line two  \n\n", "line one\n  line two  \n\n"},
		{"unknown extension", "data.xyz", "raw content", "raw content"},
		{"invalid utf8 dropped", "bin.dat", "ok\xff\xfe!", "ok!"},
		{"no hint", "", "plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(context.Background(), RawDocument{Content: []byte(tt.content), Hint: tt.hint})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_HTMLStripsBoilerplate(t *testing.T) {
	e := New(Options{})
	content := `<html><head><style>body{color:red}</style><script>var tracking=1;</script></head>
<body><nav>Menu Home</nav><header>Site header</header><p>Hello</p>
<aside>Related</aside><footer>Copyright</footer></body></html>`

	got, err := e.Extract(context.Background(), RawDocument{Content: []byte(content), Hint: "page.html"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello" {
		t.Errorf("Extract() = %q, want %q", got, "Hello")
	}
}

func TestExtract_HTMLFallbackNormalizesLines(t *testing.T) {
	e := New(Options{})
	content := "<html><body><div>  first  </div>\n\n\n<div>second</div><!-- hidden --></body></html>"

	got, err := e.Extract(context.Background(), RawDocument{Content: []byte(content), Hint: ".htm"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "first\nsecond" {
		t.Errorf("Extract() = %q, want %q", got, "first\nsecond")
	}
}

func TestExtract_HTMLArticle(t *testing.T) {
	e := New(Options{})
	sentence := "The directive establishes common rules for the protection of workers across the member states."
	var body strings.Builder
	for range 6 {
		body.WriteString("<p>" + sentence + "</p>\n")
	}
	content := `<html><head><title>Directive</title><script>var tracking=1;</script></head><body>
<nav><a href="/">Home</a></nav><article><h1>Directive</h1>` + body.String() + `</article>
<footer>Copyright notice</footer></body></html>`

	got, err := e.Extract(context.Background(), RawDocument{Content: []byte(content), Hint: "directive.html"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, sentence) {
		t.Errorf("expected article text in %q", got)
	}
	if strings.Contains(got, "tracking") {
		t.Errorf("script content leaked into %q", got)
	}
	for _, line := range strings.Split(got, "\n") {
		if line == "" || line != strings.TrimSpace(line) {
			t.Errorf("line %q is not normalized", line)
		}
	}
}

func TestExtract_XMLInMemory(t *testing.T) {
	e := New(Options{})
	content := `<?xml version="1.0"?>
<ns:root xmlns:ns="urn:example">
  <ns:title>Hello    world</ns:title>
  <!-- skipped -->
  <body>again<b>bold</b>tail</body>
</ns:root>`

	got, err := e.Extract(context.Background(), RawDocument{Content: []byte(content), Hint: "doc.xml"})
	if err != nil {
		t.Fatal(err)
	}
	want := "Hello world again bold tail"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
	if strings.Contains(got, "ns:") || strings.Contains(got, "skipped") {
		t.Errorf("unexpected markup in %q", got)
	}
}

func TestExtract_XMLCDATAJoinsText(t *testing.T) {
	e := New(Options{})
	tests := []struct {
		content string
		want    string
	}{
		{`<r><a>abcdefghij<![CDATA[klmnop]]></a></r>`, "abcdefghijklmnop"},
		{`<r><![CDATA[head]]>mid<![CDATA[<tail>]]><b>next</b></r>`, "headmid<tail> next"},
		{`<r><a>one</a><a>two</a></r>`, "one two"},
	}
	for _, tt := range tests {
		got, err := e.Extract(context.Background(), RawDocument{Content: []byte(tt.content), Hint: "c.xml"})
		if err != nil {
			t.Fatalf("%s: %v", tt.content, err)
		}
		if got != tt.want {
			t.Errorf("Extract(%s) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestExtract_XMLStreamMatchesInMemory(t *testing.T) {
	var b strings.Builder
	b.WriteString("<records>\n")
	for i := range 50 {
		b.WriteString("  <record>\n")
		b.WriteString("    <id>r" + strings.Repeat("x", i%3) + "</id>\n")
		b.WriteString("    <summary>fragment_" + strings.Repeat("abc", 2+i%5) + "</summary>\n")
		b.WriteString("    <note>prefix_text<![CDATA[cdata_tail_" + strings.Repeat("z", i%4) + "]]></note>\n")
		b.WriteString("  </record>\n")
	}
	b.WriteString("</records>")
	content := []byte(b.String())

	inMemory, err := New(Options{}).Extract(context.Background(), RawDocument{Content: content, Hint: "records.xml"})
	if err != nil {
		t.Fatal(err)
	}

	tmp := t.TempDir()
	streamer := New(Options{XMLStreamThreshold: 1, TempDir: tmp})
	streamed, err := streamer.Extract(context.Background(), RawDocument{Content: content, Hint: "records.xml"})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]int{}
	for _, f := range strings.Fields(inMemory) {
		if len(f) > DefaultXMLMinFragmentLength {
			want[f]++
		}
	}
	got := map[string]int{}
	for _, f := range strings.Split(streamed, " ") {
		got[f]++
	}
	if len(want) == 0 {
		t.Fatal("fixture produced no long fragments")
	}
	if len(got) != len(want) {
		t.Fatalf("fragment sets differ: streamed %d distinct, in-memory %d distinct", len(got), len(want))
	}
	for f, n := range want {
		if got[f] != n {
			t.Errorf("fragment %q: streamed %d, in-memory %d", f, got[f], n)
		}
	}

	assertEmptyDir(t, tmp)
}

func TestExtract_XMLStreamDirectTextOnly(t *testing.T) {
	e := New(Options{XMLStreamThreshold: 1, TempDir: t.TempDir()})
	content := `<root><p>leading text here<b>bold words inside</b>tail text is ignored</p><q>short</q></root>`

	got, err := e.Extract(context.Background(), RawDocument{Content: []byte(content), Hint: "x.xml"})
	if err != nil {
		t.Fatal(err)
	}
	want := "bold words inside leading text here"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_XMLMalformed(t *testing.T) {
	for _, threshold := range []int64{0, 1} {
		tmp := t.TempDir()
		e := New(Options{XMLStreamThreshold: threshold, TempDir: tmp})
		for _, content := range []string{"<root><a>unclosed</root>", "", "not xml", "<a/><b/>"} {
			_, err := e.Extract(context.Background(), RawDocument{Content: []byte(content), Hint: "bad.xml"})
			if !errors.Is(err, ErrDecodeFailure) {
				t.Errorf("threshold %d, content %q: error = %v, want decode failure", threshold, content, err)
			}
		}
		assertEmptyDir(t, tmp)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := New(Options{})
	docs := []RawDocument{
		{Content: []byte("<html><body><p>Same</p></body></html>"), Hint: "a.html"},
		{Content: []byte("<r><a>some repeated text</a></r>"), Hint: "a.xml"},
		{Content: []byte("plain"), Hint: "a.txt"},
	}
	for _, doc := range docs {
		first, err1 := e.Extract(context.Background(), doc)
		second, err2 := e.Extract(context.Background(), doc)
		if err1 != nil || err2 != nil {
			t.Fatalf("%s: errors %v, %v", doc.Hint, err1, err2)
		}
		if first != second {
			t.Errorf("%s: %q != %q", doc.Hint, first, second)
		}
	}
}

func TestExtract_DependencyMissing(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		doc  RawDocument
	}{
		{"no ocr engine", Options{}, RawDocument{Content: []byte("x"), Hint: "scan.png"}},
		{"pdf disabled", Options{Disabled: []Capability{CapPDF}}, RawDocument{Content: []byte("x"), Hint: "a.pdf"}},
		{"html disabled", Options{Disabled: []Capability{CapHTML}}, RawDocument{Content: []byte("<p>x</p>"), Hint: "a.html"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.opts).Extract(context.Background(), tt.doc)
			if !errors.Is(err, ErrDependencyMissing) {
				t.Fatalf("error = %v, want dependency missing", err)
			}
			if got != "" {
				t.Errorf("text = %q, want empty", got)
			}
		})
	}
}

func TestExtract_PlainTextNeedsNoCapability(t *testing.T) {
	all := []Capability{CapHTML, CapXML, CapPDF, CapDOCX, CapSpreadsheet, CapOCR}
	e := New(Options{Disabled: all})
	if len(e.Capabilities()) != 0 {
		t.Fatalf("Capabilities() = %v, want none", e.Capabilities())
	}
	got, err := e.Extract(context.Background(), RawDocument{Content: []byte("ok"), Hint: "a.md"})
	if err != nil || got != "ok" {
		t.Errorf("Extract() = %q, %v", got, err)
	}
}

func TestExtract_PanicIsUnknown(t *testing.T) {
	e := New(Options{OCR: &fakeOCR{panic: true}})
	_, err := e.Extract(context.Background(), RawDocument{Content: buildPNG(t), Hint: "scan.png"})
	if !errors.Is(err, ErrUnknown) {
		t.Fatalf("error = %v, want unknown", err)
	}
	var xerr *Error
	if !errors.As(err, &xerr) || xerr.Format != Image {
		t.Errorf("error = %#v, want *Error for image", err)
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).Extract(ctx, RawDocument{Content: []byte("x"), Hint: "a.txt"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if KindOf(err) != Unknown {
		t.Errorf("KindOf() = %v, want unknown", KindOf(err))
	}
}

func TestError_Message(t *testing.T) {
	err := NewDecodeError(PDF, "open pdf", errors.New("bad header"))
	want := "extract pdf: decode failure: open pdf: bad header"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if KindOf(err) != DecodeFailure {
		t.Errorf("KindOf() = %v", KindOf(err))
	}
}
