package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/Sternrassler/tweakwise-feed/pkg/catalog"
)

// ContentType is the media type of a rendered document.
const ContentType = "application/xml; charset=utf-8"

const documentHeader = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

// cdata carries text as an unescaped CDATA section.
type cdata struct {
	Text string `xml:",cdata"`
}

type parentsElement struct {
	CategoryID string `xml:"categoryid"`
}

type categoryElement struct {
	CategoryID string          `xml:"categoryid"`
	Name       cdata           `xml:"name"`
	URL        *cdata          `xml:"url,omitempty"`
	Rank       int             `xml:"rank"`
	Parents    *parentsElement `xml:"parents,omitempty"`
}

type attributeElement struct {
	Name  string `xml:"name"`
	Value cdata  `xml:"value"`
}

type itemElement struct {
	ID         cdata  `xml:"id"`
	GroupCode  cdata  `xml:"groupcode"`
	Name       cdata  `xml:"name"`
	URL        cdata  `xml:"url"`
	Image      cdata  `xml:"image"`
	Brand      cdata  `xml:"brand"`
	Stock      string `xml:"stock"`
	Price      string `xml:"price"`
	Attributes struct {
		Attribute []attributeElement `xml:"attribute"`
	} `xml:"attributes"`
	Categories struct {
		CategoryID []string `xml:"categoryid"`
	} `xml:"categories"`
}

type document struct {
	XMLName    xml.Name `xml:"tweakwise"`
	Categories struct {
		Category []categoryElement `xml:"category"`
	} `xml:"categories"`
	Items struct {
		Item []itemElement `xml:"item"`
	} `xml:"items"`
}

// Feed is the generated content of one run.
type Feed struct {
	Categories []catalog.Category
	Items      []catalog.Item
}

// WriteTo renders the feed as a Tweakwise XML document.
func (f *Feed) WriteTo(w io.Writer) (int64, error) {
	doc := document{}
	for _, c := range f.Categories {
		doc.Categories.Category = append(doc.Categories.Category, toCategoryElement(c))
	}
	for _, it := range f.Items {
		doc.Items.Item = append(doc.Items.Item, toItemElement(it))
	}

	cw := &countingWriter{w: w}
	if _, err := io.WriteString(cw, documentHeader); err != nil {
		return cw.n, fmt.Errorf("write header: %w", err)
	}

	enc := xml.NewEncoder(cw)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return cw.n, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return cw.n, fmt.Errorf("flush document: %w", err)
	}
	if _, err := io.WriteString(cw, "\n"); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Render returns the rendered document.
func (f *Feed) Render() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toCategoryElement(c catalog.Category) categoryElement {
	el := categoryElement{
		CategoryID: c.ID,
		Name:       cdata{c.Name},
		Rank:       c.Rank,
	}
	if c.URL != "" {
		el.URL = &cdata{c.URL}
	}
	if c.ParentID != "" {
		el.Parents = &parentsElement{CategoryID: c.ParentID}
	}
	return el
}

func toItemElement(it catalog.Item) itemElement {
	el := itemElement{
		ID:        cdata{it.ID},
		GroupCode: cdata{it.GroupCode},
		Name:      cdata{it.Name},
		URL:       cdata{it.URL},
		Image:     cdata{it.Image},
		Brand:     cdata{it.Brand},
		Stock:     it.Stock,
		Price:     it.Price,
	}
	for _, a := range it.Attributes {
		el.Attributes.Attribute = append(el.Attributes.Attribute, attributeElement{
			Name:  a.Name,
			Value: cdata{a.Value},
		})
	}
	el.Categories.CategoryID = it.CategoryIDs
	return el
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

