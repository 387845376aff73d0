package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultLanguages is the language preference used when a request has none.
var DefaultLanguages = []string{"zh-Hans", "zh-CN", "zh", "en"}

var (
	// ErrTranscriptUnavailable matches the error returned when every
	// acquisition strategy came back empty.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrEmptyTranscript marks a strategy that ran but produced no segments.
	ErrEmptyTranscript = errors.New("empty transcript")

	errNotConfigured = errors.New("not configured")
	errNoSourceURL   = errors.New("no source url")
	errNoMetadata    = errors.New("no metadata")
)

// PrimaryService fetches an official transcript by video id.
type PrimaryService interface {
	Fetch(ctx context.Context, videoID string, langs []string) ([]Segment, error)
}

// MetadataService lists the caption tracks of a video.
type MetadataService interface {
	Extract(ctx context.Context, url string) (*VideoInfo, error)
}

// TrackDownloader downloads one caption track as decoded text.
type TrackDownloader interface {
	Get(ctx context.Context, url string) (string, error)
}

// Transcriber asks a generative model to transcribe the video at url. An
// empty response with a nil error means the model had nothing usable.
type Transcriber interface {
	Transcribe(ctx context.Context, url string) (string, error)
}

// VideoInfo is the subset of extractor metadata the pipeline consumes.
type VideoInfo struct {
	ID                string                `json:"id"`
	Title             string                `json:"title"`
	Duration          float64               `json:"duration"`
	Subtitles         map[string][]TrackRef `json:"subtitles"`
	AutomaticCaptions map[string][]TrackRef `json:"automatic_captions"`

	order LanguageOrder
}

// UnmarshalJSON decodes extractor metadata and records the listing order of
// the caption languages.
func (v *VideoInfo) UnmarshalJSON(data []byte) error {
	type plain VideoInfo
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw struct {
		Subtitles         json.RawMessage `json:"subtitles"`
		AutomaticCaptions json.RawMessage `json:"automatic_captions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.order = LanguageOrder{
		OriginSubtitles:         objectKeys(raw.Subtitles),
		OriginAutomaticCaptions: objectKeys(raw.AutomaticCaptions),
	}
	*v = VideoInfo(p)
	return nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
// Anything that is not an object yields nil.
func objectKeys(raw json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
		keys = append(keys, key)
	}
	return keys
}

// Tracks returns the caption listing as a TrackIndex.
func (v *VideoInfo) Tracks() TrackIndex {
	return TrackIndex{
		OriginSubtitles:         v.Subtitles,
		OriginAutomaticCaptions: v.AutomaticCaptions,
	}
}

// Request identifies the video to transcribe.
type Request struct {
	VideoID   string
	SourceURL string // enables model transcription when set
	Languages []string
}

// Strategy is one acquisition method. Run returns the segments it found or
// an error describing why it found none.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, req Request) ([]Segment, error)
}

// Result is a finalized transcript and the strategy that produced it.
type Result struct {
	VideoID  string    `json:"video_id"`
	Strategy string    `json:"strategy"`
	Segments []Segment `json:"segments"`
}

// Text renders the transcript for the article planner.
func (r *Result) Text() string { return Render(r.Segments) }

// Attempt records a failed strategy.
type Attempt struct {
	Strategy string
	Err      error
}

// UnavailableError reports that every strategy failed. It unwraps to the
// first strategy's error, which is the reportable cause; later attempts are
// kept for diagnostics only.
type UnavailableError struct {
	VideoID  string
	Cause    error
	Attempts []Attempt
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("transcript unavailable for %s: %v", e.VideoID, e.Cause)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

func (e *UnavailableError) Is(target error) bool { return target == ErrTranscriptUnavailable }

// Names of the default strategies.
const (
	StrategyPrimary       = "primary"
	StrategyCaptionTracks = "caption_tracks"
	StrategyModel         = "model_transcription"
)

// FetcherConfig wires the collaborators of the default strategy chain. Any
// nil collaborator makes its strategy fail fast.
type FetcherConfig struct {
	Primary     PrimaryService
	Metadata    MetadataService
	Downloader  TrackDownloader
	Transcriber Transcriber
	Logger      *slog.Logger
}

// Fetcher runs strategies in order until one yields segments.
type Fetcher struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewFetcher builds the default chain: primary transcript service, ranked
// caption tracks, then model transcription.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return NewFetcherWithStrategies(logger,
		Strategy{Name: StrategyPrimary, Run: primaryStrategy(cfg.Primary)},
		Strategy{Name: StrategyCaptionTracks, Run: captionTrackStrategy(cfg.Metadata, cfg.Downloader, logger)},
		Strategy{Name: StrategyModel, Run: modelStrategy(cfg.Transcriber)},
	)
}

// NewFetcherWithStrategies builds a fetcher over an explicit strategy list.
func NewFetcherWithStrategies(logger *slog.Logger, strategies ...Strategy) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{strategies: strategies, logger: logger}
}

// Fetch returns the first non-empty finalized transcript. When req has no
// VideoID it is extracted from SourceURL, failing with ErrInvalidVideoURL.
// When every strategy fails the error is an *UnavailableError.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Result, error) {
	if req.VideoID == "" {
		id, err := ExtractVideoID(req.SourceURL)
		if err != nil {
			return nil, err
		}
		req.VideoID = id
	}
	if len(req.Languages) == 0 {
		req.Languages = DefaultLanguages
	}

	unavailable := &UnavailableError{VideoID: req.VideoID}
	for _, s := range f.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		segs, err := s.Run(ctx, req)
		if err == nil {
			segs = Finalize(segs)
			if len(segs) == 0 {
				err = ErrEmptyTranscript
			}
		}
		if err == nil {
			f.logger.Info("transcript acquired",
				slog.String("id", req.VideoID),
				slog.String("strategy", s.Name),
				slog.Int("segments", len(segs)),
			)
			return &Result{VideoID: req.VideoID, Strategy: s.Name, Segments: segs}, nil
		}

		f.logger.Warn("transcript strategy failed",
			slog.String("id", req.VideoID),
			slog.String("strategy", s.Name),
			slog.Any("error", err),
		)
		unavailable.Attempts = append(unavailable.Attempts, Attempt{Strategy: s.Name, Err: err})
		if unavailable.Cause == nil {
			unavailable.Cause = fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	if unavailable.Cause == nil {
		unavailable.Cause = errNotConfigured
	}
	return nil, unavailable
}

func primaryStrategy(svc PrimaryService) func(context.Context, Request) ([]Segment, error) {
	return func(ctx context.Context, req Request) ([]Segment, error) {
		if svc == nil {
			return nil, errNotConfigured
		}
		return svc.Fetch(ctx, req.VideoID, req.Languages)
	}
}

func captionTrackStrategy(meta MetadataService, dl TrackDownloader, logger *slog.Logger) func(context.Context, Request) ([]Segment, error) {
	return func(ctx context.Context, req Request) ([]Segment, error) {
		if meta == nil || dl == nil {
			return nil, errNotConfigured
		}
		info, err := meta.Extract(ctx, WatchURL(req.VideoID))
		if err != nil {
			return nil, fmt.Errorf("extract metadata: %w", err)
		}
		if info == nil {
			return nil, errNoMetadata
		}
		candidates := RankTracksInOrder(info.Tracks(), info.order, req.Languages)
		tried := 0
		for _, c := range candidates {
			if !Supported(c.Ext) {
				continue
			}
			tried++
			body, err := dl.Get(ctx, c.URL)
			if err != nil {
				logger.Debug("caption track download failed",
					slog.String("lang", c.Language),
					slog.String("ext", c.Ext),
					slog.Any("error", err),
				)
				continue
			}
			if segs := ParseTrack(c.Ext, body); len(segs) > 0 {
				return segs, nil
			}
		}
		if tried == 0 {
			return nil, fmt.Errorf("no usable caption tracks among %d", len(candidates))
		}
		return nil, fmt.Errorf("%d caption tracks yielded no text", tried)
	}
}

func modelStrategy(t Transcriber) func(context.Context, Request) ([]Segment, error) {
	return func(ctx context.Context, req Request) ([]Segment, error) {
		if t == nil {
			return nil, errNotConfigured
		}
		if strings.TrimSpace(req.SourceURL) == "" {
			return nil, errNoSourceURL
		}
		text, err := t.Transcribe(ctx, req.SourceURL)
		if err != nil {
			return nil, err
		}
		return AdaptModelResponse(text), nil
	}
}
