package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/vaultindex/config"
	"github.com/poiesic/vaultindex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePDF struct {
	pages []string
	err   error
}

func (f fakePDF) ExtractPages(string) ([]string, error) {
	return f.pages, f.err
}

var fixedMtime = time.Date(2024, 5, 6, 12, 0, 0, 0, time.Local)

func writeDated(t *testing.T, path, content string) string {
	t.Helper()
	writeFile(t, path, content)
	require.NoError(t, os.Chtimes(path, fixedMtime, fixedMtime))
	return path
}

func newParser(t *testing.T, vault string, opts ...ParserOption) *Parser {
	t.Helper()
	p, err := NewParser(vault, config.DefaultConfig(), opts...)
	require.NoError(t, err)
	return p
}

func TestParser_Note(t *testing.T) {
	vault := t.TempDir()
	path := writeDated(t, filepath.Join(vault, "20-Notes", "plan.md"),
		"---\ntags: [projects]\ncreated: 2024-01-05\nauthor: sam\n---\nShip it #devops today. Then rest #projects\n")
	p := newParser(t, vault)

	doc, err := p.Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "20-Notes/plan.md", doc.Path)
	assert.Equal(t, core.DocumentKindNote, doc.Kind)
	assert.Equal(t, "\nShip it #devops today. Then rest #projects\n", doc.Content)
	assert.Equal(t, []string{"devops", "projects"}, doc.Tags)
	assert.Equal(t, "2024-01-05", doc.Created)
	assert.Equal(t, "2024-05-06", doc.Modified)
	assert.Equal(t, "plan", doc.Title)
	assert.Equal(t, map[string]any{"author": "sam"}, doc.Extra)
}

func TestParser_NoteFrontmatterOverrides(t *testing.T) {
	vault := t.TempDir()
	path := writeDated(t, filepath.Join(vault, "20-Notes", "x.md"),
		"---\ntitle: Custom\nmodified: \"2023-12-31\"\nfile_path: bogus\n---\nbody")
	p := newParser(t, vault)

	doc, err := p.ParseNote(path)
	require.NoError(t, err)

	assert.Equal(t, "Custom", doc.Title)
	assert.Equal(t, "2023-12-31", doc.Modified)
	assert.Equal(t, "2024-05-06", doc.Created)
	assert.Equal(t, "20-Notes/x.md", doc.Metadata()[core.PayloadFilePath])
	assert.Empty(t, doc.Extra)
}

func TestParser_Meeting(t *testing.T) {
	vault := t.TempDir()
	path := writeDated(t, filepath.Join(vault, "10-Meetings", "2024", "standup.md"), "Notes from standup")
	p := newParser(t, vault)

	doc, err := p.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, core.DocumentKindMeeting, doc.Kind)
	assert.Equal(t, "10-Meetings/2024/standup.md", doc.Path)
	assert.Empty(t, doc.Tags)
}

func TestParser_InvalidUTF8(t *testing.T) {
	vault := t.TempDir()
	path := filepath.Join(vault, "20-Notes", "bad.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644))

	_, err := newParser(t, vault).Parse(path)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestParser_PDF(t *testing.T) {
	vault := t.TempDir()
	path := writeDated(t, filepath.Join(vault, "20-Notes", "report.pdf"), "%PDF")
	p := newParser(t, vault, WithPDFExtractor(fakePDF{pages: []string{"  page one \n", "", "   ", "page three"}}))

	require.True(t, p.HasPDFExtractor())
	doc, err := p.Parse(path)
	require.NoError(t, err)

	assert.Equal(t, core.DocumentKindPDF, doc.Kind)
	assert.Equal(t, "page one\n\npage three", doc.Content)
	assert.Equal(t, "report", doc.Title)
	assert.Equal(t, "2024-05-06", doc.Modified)
	assert.Empty(t, doc.Created)
}

func TestParser_PDFErrors(t *testing.T) {
	vault := t.TempDir()
	path := writeDated(t, filepath.Join(vault, "20-Notes", "report.pdf"), "%PDF")

	t.Run("no extractor", func(t *testing.T) {
		p := newParser(t, vault)
		assert.False(t, p.HasPDFExtractor())

		_, err := p.ParsePDF(path)
		assert.ErrorIs(t, err, core.ErrPDFExtractorUnavailable)
	})

	t.Run("extractor failure", func(t *testing.T) {
		boom := errors.New("corrupt xref")
		p := newParser(t, vault, WithPDFExtractor(fakePDF{err: boom}))

		_, err := p.Parse(path)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("real extractor rejects garbage", func(t *testing.T) {
		p := newParser(t, vault, WithPDFExtractor(NewPDFExtractor()))

		_, err := p.Parse(path)
		assert.Error(t, err)
	})
}

func TestParser_Dispatch(t *testing.T) {
	vault := t.TempDir()
	p := newParser(t, vault)

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeDated(t, filepath.Join(vault, "20-Notes", "img.png"), "png")
		_, err := p.Parse(path)
		assert.ErrorIs(t, err, ErrUnsupportedDocument)
	})

	t.Run("outside vault", func(t *testing.T) {
		path := writeDated(t, filepath.Join(t.TempDir(), "elsewhere.md"), "x")
		_, err := p.Parse(path)
		assert.ErrorIs(t, err, ErrOutsideVault)
	})
}
