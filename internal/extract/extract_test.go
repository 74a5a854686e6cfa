package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// writeDocx builds a minimal docx archive with the given document.xml body.
func writeDocx(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "req.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestFromFile_Txt(t *testing.T) {
	path := writeFile(t, "req.txt", "  Users must be able to log in.\n")

	got, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if got != "Users must be able to log in." {
		t.Errorf("text = %q", got)
	}
}

func TestFromFile_Docx(t *testing.T) {
	path := writeDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Login requirements.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Users can </w:t></w:r><w:r><w:t>reset passwords.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	got, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	want := "Login requirements.\nUsers can reset passwords."
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestFromFile_DocxNotAZip(t *testing.T) {
	path := writeFile(t, "req.docx", "this is not a zip archive")

	_, err := FromFile(path)
	if !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("err = %v, want ErrCorruptFile", err)
	}
}

func TestFromFile_DocHTML(t *testing.T) {
	path := writeFile(t, "req.doc", `<html>
<head><title>Req</title><style>p { color: red }</style></head>
<body><p>Checkout must accept cards.</p><script>alert(1)</script></body>
</html>`)

	got, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if got != "Checkout must accept cards." {
		t.Errorf("text = %q", got)
	}
	if strings.Contains(got, "alert") || strings.Contains(got, "color") {
		t.Errorf("markup leaked into text: %q", got)
	}
}

func TestFromFile_DocBinaryUnsupported(t *testing.T) {
	path := writeFile(t, "req.doc", "\xd0\xcf\x11\xe0binary compound file")

	_, err := FromFile(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFromFile_UnknownExtension(t *testing.T) {
	path := writeFile(t, "req.pdf", "%PDF-1.4")

	_, err := FromFile(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}
