package transcript

import (
	"encoding/xml"
	"html"
	"strconv"
	"strings"
)

// timedTextLine is a <text start="s" dur="s"> element of the srv1 timedtext
// format served by YouTube caption base URLs.
type timedTextLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Body  string `xml:",innerxml"`
}

// srv3Para is a <p t="ms" d="ms"> element of the srv3 format; word-level
// <s> children are flattened into the paragraph text.
type srv3Para struct {
	T    string `xml:"t,attr"`
	D    string `xml:"d,attr"`
	Body string `xml:",innerxml"`
}

// ParseTimedText decodes srv1 timedtext XML, where times are in seconds.
func ParseTimedText(content string) []Segment {
	var segs []Segment
	walkXML(content, "text", func(dec *xml.Decoder, el *xml.StartElement) {
		var line timedTextLine
		if err := dec.DecodeElement(&line, el); err != nil {
			return
		}
		start, err := strconv.ParseFloat(strings.TrimSpace(line.Start), 64)
		if err != nil {
			return
		}
		dur, _ := strconv.ParseFloat(strings.TrimSpace(line.Dur), 64)
		if text := xmlText(line.Body); text != "" {
			segs = append(segs, Segment{Start: max(0, start), Duration: max(0, dur), Text: text})
		}
	})
	return segs
}

// ParseSRV3 decodes srv3 XML, where times are in milliseconds.
func ParseSRV3(content string) []Segment {
	var segs []Segment
	walkXML(content, "p", func(dec *xml.Decoder, el *xml.StartElement) {
		var p srv3Para
		if err := dec.DecodeElement(&p, el); err != nil {
			return
		}
		startMs, err := strconv.ParseFloat(strings.TrimSpace(p.T), 64)
		if err != nil {
			return
		}
		durMs, _ := strconv.ParseFloat(strings.TrimSpace(p.D), 64)
		if text := xmlText(p.Body); text != "" {
			segs = append(segs, Segment{Start: max(0, startMs/1000), Duration: max(0, durMs/1000), Text: text})
		}
	})
	return segs
}

// walkXML calls fn for every start element with the given local name. A
// syntax error ends the walk; elements seen before it are kept.
func walkXML(content, name string, fn func(*xml.Decoder, *xml.StartElement)) {
	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		if el, ok := tok.(xml.StartElement); ok && el.Name.Local == name {
			fn(dec, &el)
		}
	}
}

// xmlText strips inner markup and decodes entities. YouTube double-escapes
// text ("&amp;#39;"), so unescaping runs twice.
func xmlText(inner string) string {
	text := markupTagRe.ReplaceAllString(inner, "")
	text = html.UnescapeString(html.UnescapeString(text))
	return CleanText(text)
}
