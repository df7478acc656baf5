package sha1sum

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gxml "github.com/jbowtie/gokogiri/xml"
)

var errNotManifest = errors.New("not a manifest")

// Manifest is a list of expected files, each with a size and a SHA-1
// digest:
//
//	<manifest>
//	  <file name="a.bin" size="3" sha1="a9993e364706816aba3e25717850c26c9cd0d89d"/>
//	</manifest>
//
// Matched files are removed from a second copy of the document so that what
// is left over can be reported.
type Manifest struct {
	input  *gxml.XmlDocument
	output *gxml.XmlDocument
	mutex  sync.Mutex
}

func xmlParse(b []byte) (*gxml.XmlDocument, error) {
	return gxml.Parse(b, gxml.DefaultEncodingBytes, nil, gxml.XML_PARSE_NOBLANKS, gxml.DefaultEncodingBytes)
}

// NewManifest parses b, which must have a <manifest> root element.
func NewManifest(b []byte) (*Manifest, error) {
	m := Manifest{}

	document, err := xmlParse(b)
	if err != nil {
		return nil, err
	}
	if document.Root() == nil || document.Root().Name() != "manifest" {
		document.Free()
		return nil, errNotManifest
	}
	m.input = document

	// In the absence of a way to clone a document...
	document, err = xmlParse(b)
	if err != nil {
		m.input.Free()
		return nil, err
	}
	m.output = document

	return &m, nil
}

// Free releases both underlying documents.
func (m *Manifest) Free() {
	m.input.Free()
	m.output.Free()
}

// Marshal renders the entries that haven't been matched.
func (m *Manifest) Marshal() (b []byte, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// libxml2 serialization failures surface as a panic
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("marshal manifest: %v", r)
		}
	}()

	b, size := m.output.ToXml(nil, nil)

	return b[:size], nil
}

// Merge appends the file entries of another manifest.
func (m *Manifest) Merge(b []byte) error {
	input, err := xmlParse(b)
	if err != nil {
		return err
	}
	defer input.Free()

	if input.Root() == nil {
		return errNotManifest
	}

	var files []gxml.Node
	for file := input.Root().FirstChild(); file != nil; file = file.NextSibling() {
		if file.Name() != "file" {
			return fmt.Errorf("unknown element: %s", file.Name())
		}
		files = append(files, file)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Copies must belong to the output document as input is freed
	for _, file := range files {
		if err := m.output.Root().AddChild(file.DuplicateTo(m.output, -1)); err != nil {
			return err
		}
	}

	return nil
}

func fileXPath(size uint64, sha string) string {
	return "/manifest/file[@size='" + strconv.FormatUint(size, 10) + "' and (@sha1='" + strings.ToLower(sha) + "' or @sha1='" + strings.ToUpper(sha) + "')]"
}

// match reports whether a file with the given size and digest is listed in
// the manifest and, if so, removes every matching entry from the output.
func (m *Manifest) match(size uint64, sha string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	nodes, err := m.input.Search(fileXPath(size, sha))
	if err != nil {
		return false, err
	}

	if len(nodes) == 0 {
		return false, nil
	}

	nodes, err = m.output.Search(fileXPath(size, sha))
	if err != nil {
		return false, err
	}

	for _, node := range nodes {
		node.Unlink()
	}

	return true, nil
}

// Remaining returns the number of entries that haven't been matched.
func (m *Manifest) Remaining() (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	nodes, err := m.output.Search("/manifest/file")
	if err != nil {
		return 0, err
	}

	return len(nodes), nil
}

type manifestFile struct {
	Name string `xml:"name,attr"`
	Size uint64 `xml:"size,attr"`
	SHA1 string `xml:"sha1,attr"`
}

type manifestDocument struct {
	XMLName xml.Name       `xml:"manifest"`
	Files   []manifestFile `xml:"file"`
}

// GenerateManifest renders results as a manifest document.
func GenerateManifest(results []Result) ([]byte, error) {
	doc := manifestDocument{}
	for _, r := range results {
		doc.Files = append(doc.Files, manifestFile{
			Name: r.Name(),
			Size: r.Size,
			SHA1: r.SHA1,
		})
	}

	b, err := xml.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), append(b, '\n')...), nil
}
