package transcript

import (
	"sort"
	"strings"
)

// Caption origins as keyed in yt-dlp metadata.
const (
	OriginSubtitles         = "subtitles"          // human-authored
	OriginAutomaticCaptions = "automatic_captions" // auto-generated
)

// unknownFormatRank sorts unrecognised formats after every known one.
const unknownFormatRank = 99

var (
	originRank = map[string]int{
		OriginSubtitles:         0,
		OriginAutomaticCaptions: 1,
	}
	originOrder = []string{OriginSubtitles, OriginAutomaticCaptions}

	formatRank = map[string]int{
		"json3": 0,
		"vtt":   1,
		"srv3":  2,
		"ttml":  3,
		"xml":   4,
		"srv1":  5,
	}
)

// TrackRef is one downloadable caption resource as listed by yt-dlp.
type TrackRef struct {
	URL  string `json:"url"`
	Ext  string `json:"ext"`
	Name string `json:"name,omitempty"`
}

// TrackIndex maps origin -> language code -> available tracks.
type TrackIndex map[string]map[string][]TrackRef

// LanguageOrder maps origin -> language codes in the order the extractor
// listed them.
type LanguageOrder map[string][]string

// Candidate is a ranked caption track awaiting download.
type Candidate struct {
	URL          string
	Ext          string
	Language     string
	Origin       string
	LanguageRank int
	OriginRank   int
	FormatRank   int
}

// RankTracks flattens idx into candidates ordered by language preference,
// then human before automatic captions, then format reliability (json3,
// vtt, srv3, ttml, xml, srv1, anything else). Languages missing from langs rank
// after all preferred ones, alphabetically. Entries without URL or extension
// are dropped.
func RankTracks(idx TrackIndex, langs []string) []Candidate {
	return RankTracksInOrder(idx, nil, langs)
}

// RankTracksInOrder is RankTracks with unlisted languages kept in their
// listing order. Codes missing from order follow, alphabetically.
func RankTracksInOrder(idx TrackIndex, order LanguageOrder, langs []string) []Candidate {
	langRank := make(map[string]int, len(langs))
	for i, l := range langs {
		if _, seen := langRank[l]; !seen {
			langRank[l] = i
		}
	}
	unlisted := len(langs) + 1

	var out []Candidate
	for _, origin := range originOrder {
		byLang := idx[origin]
		codes := listedCodes(byLang, order[origin])

		for _, code := range codes {
			lr, ok := langRank[code]
			if !ok {
				lr = unlisted
			}
			for _, ref := range byLang[code] {
				u := strings.TrimSpace(ref.URL)
				ext := strings.ToLower(strings.TrimSpace(ref.Ext))
				if u == "" || ext == "" {
					continue
				}
				fr, ok := formatRank[ext]
				if !ok {
					fr = unknownFormatRank
				}
				out = append(out, Candidate{
					URL:          u,
					Ext:          ext,
					Language:     code,
					Origin:       origin,
					LanguageRank: lr,
					OriginRank:   originRank[origin],
					FormatRank:   fr,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LanguageRank != b.LanguageRank {
			return a.LanguageRank < b.LanguageRank
		}
		if a.OriginRank != b.OriginRank {
			return a.OriginRank < b.OriginRank
		}
		return a.FormatRank < b.FormatRank
	})
	return out
}

// listedCodes returns the keys of byLang, those in listed first and in that
// order, the rest sorted.
func listedCodes(byLang map[string][]TrackRef, listed []string) []string {
	codes := make([]string, 0, len(byLang))
	seen := make(map[string]bool, len(byLang))
	for _, code := range listed {
		if _, ok := byLang[code]; ok && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	var rest []string
	for code := range byLang {
		if !seen[code] {
			rest = append(rest, code)
		}
	}
	sort.Strings(rest)
	return append(codes, rest...)
}

// ParseTrack decodes a downloaded caption track by its format extension.
// Unsupported formats return nil.
func ParseTrack(ext, content string) []Segment {
	switch strings.ToLower(ext) {
	case "json3":
		return ParseJSON3(content)
	case "vtt":
		return ParseVTT(content)
	case "srv3":
		return ParseSRV3(content)
	case "srv1", "xml":
		return ParseTimedText(content)
	}
	return nil
}

// Supported reports whether ParseTrack can decode the format.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case "json3", "vtt", "srv3", "srv1", "xml":
		return true
	}
	return false
}
