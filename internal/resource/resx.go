package resource

import (
	"encoding/xml"
	"fmt"
	"io"
)

// ResxFormat is the .NET XML resource format.
type ResxFormat struct{}

type resxDocument struct {
	XMLName xml.Name     `xml:"root"`
	Headers []resxHeader `xml:"resheader"`
	Data    []resxData   `xml:"data"`
}

type resxHeader struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type resxData struct {
	Name    string `xml:"name,attr"`
	Space   string `xml:"xml:space,attr,omitempty"`
	Value   string `xml:"value"`
	Comment string `xml:"comment,omitempty"`
}

var resxHeaders = []resxHeader{
	{Name: "resmimetype", Value: "text/microsoft-resx"},
	{Name: "version", Value: "2.0"},
	{Name: "reader", Value: "System.Resources.ResXResourceReader, System.Windows.Forms, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089"},
	{Name: "writer", Value: "System.Resources.ResXResourceWriter, System.Windows.Forms, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089"},
}

func (ResxFormat) Name() string         { return "resx" }
func (ResxFormat) Extensions() []string { return []string{".resx"} }

func (ResxFormat) Read(r io.Reader) ([]Entry, error) {
	var doc resxDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode resx: %w", err)
	}
	entries := make([]Entry, 0, len(doc.Data))
	for _, d := range doc.Data {
		entries = append(entries, Entry{Key: d.Name, Value: d.Value, Comment: d.Comment})
	}
	return entries, nil
}

func (ResxFormat) Write(w io.Writer, entries []Entry) error {
	doc := resxDocument{Headers: resxHeaders}
	for _, e := range entries {
		doc.Data = append(doc.Data, resxData{Name: e.Key, Space: "preserve", Value: e.Value, Comment: e.Comment})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode resx: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
