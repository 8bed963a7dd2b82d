package parser

import (
	"bytes"
	"strings"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"iso-712.xml":          FormatISOXML,
		"ISO-712.XML":          FormatISOXML,
		"/path/to/iso-712.xml": FormatISOXML,
		"iso-712.json":         FormatIRJSON,
		"iso-712.adoc":         FormatUnknown,
		"iso-712":              FormatUnknown,
		"iso-712.xml.bak":      FormatUnknown,
	}

	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestFormat_String(t *testing.T) {
	for f, want := range map[Format]string{
		FormatISOXML:  "isoxml",
		FormatIRJSON:  "json",
		FormatUnknown: "unknown",
		Format(999):   "unknown",
	} {
		if got := f.String(); got != want {
			t.Errorf("Format(%d).String() = %q, want %q", int(f), got, want)
		}
	}
}

func TestDetectFormatFromReader(t *testing.T) {
	bom := string([]byte{0xEF, 0xBB, 0xBF})

	tests := []struct {
		name    string
		data    string
		want    Format
		wantErr bool
	}{
		{"xml declaration", `<?xml version="1.0"?><iso-standard/>`, FormatISOXML, false},
		{"bom and blank lines", bom + "\n\n<iso-standard/>", FormatISOXML, false},
		{"comment first", "<!-- draft --><iso-standard/>", FormatISOXML, false},
		{"json object", `  {"version":"1.0"}`, FormatIRJSON, false},
		{"asciidoc", "= ISO 712\n", FormatUnknown, false},
		// only the first 512 bytes are inspected
		{"blank header then xml", strings.Repeat(" ", 600) + "<iso-standard/>", FormatUnknown, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectFormatFromReader(strings.NewReader(tc.data))
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error, got format %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("DetectFormatFromReader() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetectFormatFromReader_Empty(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("  \n")} {
		if _, err := DetectFormatFromReader(bytes.NewReader(data)); err == nil {
			t.Errorf("expected error for blank input %q", data)
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	if DefaultOptions().Draft {
		t.Error("review notes must be dropped by default")
	}
}
