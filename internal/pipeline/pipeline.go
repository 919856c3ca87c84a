package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jamsync/internal/catalog"
	"jamsync/internal/config"
	"jamsync/internal/logging"
	"jamsync/internal/matching"
	"jamsync/internal/session"
	"jamsync/internal/sheet"
	"jamsync/internal/textmatch"
)

// Extractor turns one worksheet into a session.
type Extractor interface {
	Extract(title, spreadsheet string, rows []sheet.RawRow) (*session.Session, error)
}

// Options configures a Pipeline.
type Options struct {
	Workers            int
	SkipFirstWorksheet bool
	// CacheTTL bounds how long a match outcome is reused within a run.
	// Zero disables memoization.
	CacheTTL  time.Duration
	Extractor Extractor
	Metrics   *Metrics
	Logger    *slog.Logger
	Clock     func() time.Time
}

// OptionsFromConfig maps configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		Workers:            cfg.Sync.Workers,
		SkipFirstWorksheet: cfg.Sheets.SkipFirstWorksheet,
		CacheTTL:           time.Duration(cfg.Matching.CacheTTLSeconds) * time.Second,
		Logger:             logger,
	}
}

// BuildMatcher assembles the catalog and matcher described by cfg.
func BuildMatcher(cfg *config.Config, entries []catalog.Entry) (*matching.Matcher, error) {
	normalizer, err := textmatch.NormalizerByName(cfg.Matching.Normalizer)
	if err != nil {
		return nil, err
	}
	c := catalog.New(entries, normalizer)
	if cfg.Matching.RequiredTag != "" {
		c = c.WithTag(cfg.Matching.RequiredTag)
	}
	return matching.New(c, cfg.Matching.Threshold)
}

// Result carries the sessions of a run and its report.
type Result struct {
	Sessions []*session.Session
	Report   *Report
}

// Pipeline runs workbooks through extraction and catalog matching.
type Pipeline struct {
	matcher *matching.Matcher
	opts    Options
	logger  *slog.Logger
}

// New returns a Pipeline. The matcher is required.
func New(matcher *matching.Matcher, opts Options) (*Pipeline, error) {
	if matcher == nil {
		return nil, errors.New("pipeline: matcher is required")
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Extractor == nil {
		opts.Extractor = session.NewExtractor()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Pipeline{
		matcher: matcher,
		opts:    opts,
		logger:  logging.NewComponentLogger(opts.Logger, "pipeline"),
	}, nil
}

type job struct {
	spreadsheet string
	index       int
	worksheet   sheet.Worksheet
}

type outcome struct {
	session *session.Session
	skip    *Skip
	result  sanitized
}

// Run processes every worksheet in wb. When ctx is cancelled no further
// worksheets are started; the sessions finished so far are returned along
// with the context error.
func (p *Pipeline) Run(ctx context.Context, wb sheet.Workbook) (*Result, error) {
	report := &Report{
		RunID:      uuid.NewString(),
		StartedAt:  p.opts.Clock().UTC(),
		Normalizer: p.matcher.Catalog().Normalizer().Name(),
		Threshold:  p.matcher.Threshold(),
	}
	ctx = logging.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, p.logger)

	var jobs []job
	for _, ss := range wb.Spreadsheets {
		for i, ws := range ss.Worksheets {
			jobs = append(jobs, job{spreadsheet: ss.Name, index: i, worksheet: ws})
		}
	}
	logger.Info("sync run started",
		logging.Int("worksheets", len(jobs)),
		logging.Int("catalog_entries", p.matcher.Catalog().Len()),
		logging.Int("workers", p.opts.Workers),
	)

	sz := newSanitizer(p.matcher, p.opts.CacheTTL)
	outcomes := make([]*outcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for i, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = p.process(ctx, sz, j)
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{Report: report}
	unmatched := pairSet{}
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		report.Worksheets++
		if o.skip != nil {
			report.Skipped = append(report.Skipped, *o.skip)
			p.opts.Metrics.worksheetSkipped(o.skip.Reason)
			continue
		}
		result.Sessions = append(result.Sessions, o.session)
		report.Sessions++
		p.opts.Metrics.sessionExtracted()

		for _, m := range o.result.matches {
			p.opts.Metrics.songMatched(m.Score)
		}
		report.Matches = append(report.Matches, o.result.matches...)
		report.SongsMatched += len(o.result.matches)
		for _, pair := range o.result.unmatched {
			unmatched.add(pair)
			p.opts.Metrics.songUnmatched()
		}
		report.SongsUnmatched += len(o.result.unmatched)
		for range o.result.malformed {
			p.opts.Metrics.malformedEntry()
		}
		report.Malformed += o.result.malformed
	}
	report.Unmatched = unmatched.sorted()
	report.FinishedAt = p.opts.Clock().UTC()
	p.opts.Metrics.runFinished(report)

	if len(report.Unmatched) > 0 {
		logging.WarnWithContext(logger, "songs without catalog match", "songs_unmatched",
			logging.Int("distinct_pairs", len(report.Unmatched)),
			logging.Int("events", report.SongsUnmatched),
			logging.String(logging.FieldImpact, "unmatched songs keep their worksheet spelling"),
			logging.String(logging.FieldErrorHint, "run 'jamsync unmatched' and add catalog entries or fix typos"),
		)
	}
	logger.Info("sync run complete",
		logging.Int("sessions", report.Sessions),
		logging.Int("skipped", len(report.Skipped)),
		logging.Int("matched", report.SongsMatched),
		logging.Int("unmatched", report.SongsUnmatched),
		logging.Int("malformed", report.Malformed),
		logging.Duration("duration", report.Duration()),
	)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("sync run interrupted: %w", err)
	}
	return result, nil
}

func (p *Pipeline) process(ctx context.Context, sz *sanitizer, j job) (out *outcome) {
	title := j.worksheet.Title
	logger := logging.WithContext(logging.WithWorksheet(ctx, j.spreadsheet, title), p.logger)
	skip := func(reason session.SkipReason, detail string) *outcome {
		return &outcome{skip: &Skip{Spreadsheet: j.spreadsheet, Title: title, Reason: reason, Detail: detail}}
	}

	if p.opts.SkipFirstWorksheet && j.index == 0 {
		logger.Debug("index worksheet skipped")
		return skip(ReasonIndexWorksheet, "")
	}

	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "worksheet extraction failed", "worksheet_failed",
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldErrorHint, "inspect the worksheet contents for unexpected values"),
			)
			out = skip(ReasonExtractionFailed, fmt.Sprint(r))
		}
	}()

	sess, err := p.opts.Extractor.Extract(title, j.spreadsheet, j.worksheet.Rows())
	if err != nil {
		reason, detail := ReasonExtractionFailed, err.Error()
		if s, ok := session.AsSkip(err); ok {
			reason, detail = s.Reason, s.Detail
		}
		logging.WarnWithContext(logger, "worksheet skipped", "worksheet_skipped",
			logging.String(logging.FieldReason, string(reason)),
			logging.String("detail", detail),
			logging.String(logging.FieldImpact, "no session exported for this worksheet"),
			logging.String(logging.FieldErrorHint, "worksheet titles must be YYYY/MM/DD with a header and data rows"),
		)
		return skip(reason, detail)
	}

	res := sz.sanitize(sess)
	logger.Debug("session extracted",
		logging.String(logging.FieldSessionID, sess.ID),
		logging.Int("events", len(sess.Events)),
		logging.Int("matched", len(res.matches)),
		logging.Int("unmatched", len(res.unmatched)),
		logging.Int("malformed", res.malformed),
	)
	for _, pair := range res.unmatched {
		logger.Debug("no catalog match", logging.SongPair(pair.Song, pair.Artist))
	}
	return &outcome{session: sess, result: res}
}
