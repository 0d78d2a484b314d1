// Package intake turns vendor source files into import results and commits
// reviewed candidates to the store.
package intake

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/vendor-intake/internal/fetcher"
	"github.com/sells-group/vendor-intake/internal/model"
	"github.com/sells-group/vendor-intake/internal/ocr"
	"github.com/sells-group/vendor-intake/internal/pipeline"
	"github.com/sells-group/vendor-intake/internal/store"
)

const defaultMaxConcurrent = 4

// ErrNoRecognizer is the recognition failure reported when an image arrives
// and no recognizer is configured.
var ErrNoRecognizer = eris.New("intake: no image recognizer configured")

// Service dispatches source files to the pipeline by kind.
type Service struct {
	pipeline      *pipeline.Pipeline
	recognizer    ocr.Recognizer
	store         store.Store
	maxConcurrent int
}

// Option configures a Service.
type Option func(*Service)

// WithRecognizer sets the image recognizer.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(s *Service) { s.recognizer = r }
}

// WithStore sets the store used by Commit.
func WithStore(st store.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithMaxConcurrent bounds how many files ImportFiles parses at once.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// New creates a Service. A nil pipeline gets the default one.
func New(p *pipeline.Pipeline, opts ...Option) *Service {
	if p == nil {
		p = pipeline.Default()
	}
	s := &Service{pipeline: p, maxConcurrent: defaultMaxConcurrent}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportFile parses one file from disk.
func (s *Service) ImportFile(ctx context.Context, path string, expected *int) (*model.ImportResult, error) {
	name := filepath.Base(path)

	var (
		res *model.ImportResult
		err error
	)
	switch fetcher.KindOf(path) {
	case fetcher.KindText:
		var text string
		text, err = fetcher.ReadTextFile(path, "")
		if err != nil {
			return nil, err
		}
		res, err = s.pipeline.ParseText(text, expected)
	case fetcher.KindTabular:
		var rows []model.Row
		rows, err = fetcher.ReadRows(ctx, path)
		if err != nil {
			return nil, err
		}
		res, err = s.pipeline.ParseRows(rows, expected)
	case fetcher.KindImage:
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "intake: read image %s", name)
		}
		res, err = s.parseImage(ctx, ocr.NewImage(name, data), expected)
	default:
		return nil, eris.Wrapf(fetcher.ErrUnsupportedFormat, "intake: %s", name)
	}
	if err != nil {
		return nil, err
	}

	res.Session.SourceName = name
	logResult(res)
	return res, nil
}

// ImportUpload parses an uploaded file whose kind is taken from name.
func (s *Service) ImportUpload(ctx context.Context, name string, r io.Reader, expected *int) (*model.ImportResult, error) {
	name = filepath.Base(name)

	var (
		res *model.ImportResult
		err error
	)
	switch fetcher.KindOf(name) {
	case fetcher.KindText:
		var text string
		text, err = fetcher.ReadText(r, "")
		if err != nil {
			return nil, err
		}
		res, err = s.pipeline.ParseText(text, expected)
	case fetcher.KindTabular:
		// The tabular readers work on paths, so spool the upload first.
		var path string
		path, err = spool(name, r)
		if err != nil {
			return nil, err
		}
		defer os.Remove(path) //nolint:errcheck
		var rows []model.Row
		rows, err = fetcher.ReadRows(ctx, path)
		if err != nil {
			return nil, err
		}
		res, err = s.pipeline.ParseRows(rows, expected)
	case fetcher.KindImage:
		var data []byte
		data, err = io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrapf(err, "intake: read upload %s", name)
		}
		res, err = s.parseImage(ctx, ocr.NewImage(name, data), expected)
	default:
		return nil, eris.Wrapf(fetcher.ErrUnsupportedFormat, "intake: %s", name)
	}
	if err != nil {
		return nil, err
	}

	res.Session.SourceName = name
	logResult(res)
	return res, nil
}

// ImportText parses free text supplied directly, e.g. pasted into a form.
func (s *Service) ImportText(text string, expected *int) (*model.ImportResult, error) {
	return s.pipeline.ParseText(text, expected)
}

// ImportRows parses rows supplied directly.
func (s *Service) ImportRows(rows []model.Row, expected *int) (*model.ImportResult, error) {
	return s.pipeline.ParseRows(rows, expected)
}

// FileResult is the outcome of one file in a batch.
type FileResult struct {
	Path   string              `json:"path" yaml:"path"`
	Result *model.ImportResult `json:"result,omitempty" yaml:"result,omitempty"`
	Err    error               `json:"-" yaml:"-"`
	Error  string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// ImportFiles parses paths concurrently. Results keep the order of paths and
// one file's failure never affects the others.
func (s *Service) ImportFiles(ctx context.Context, paths []string, expected *int) []FileResult {
	results := make([]FileResult, len(paths))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, path := range paths {
		g.Go(func() error {
			res, err := s.ImportFile(ctx, path, expected)
			results[i] = FileResult{Path: path, Result: res, Err: err}
			if err != nil {
				results[i].Error = err.Error()
				zap.L().Warn("intake: file failed", zap.String("file", path), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Service) parseImage(ctx context.Context, img ocr.Image, expected *int) (*model.ImportResult, error) {
	var (
		text   string
		recErr error
	)
	if s.recognizer == nil {
		recErr = ErrNoRecognizer
	} else {
		text, recErr = s.recognizer.Recognize(ctx, img)
	}
	if recErr != nil {
		zap.L().Warn("intake: recognition failed", zap.String("file", img.Name), zap.Error(recErr))
	}
	return s.pipeline.ParseRecognized(text, recErr, expected)
}

func spool(name string, r io.Reader) (string, error) {
	f, err := os.CreateTemp("", "upload-*"+filepath.Ext(name))
	if err != nil {
		return "", eris.Wrap(err, "intake: create temp file")
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name()) //nolint:errcheck
		return "", eris.Wrapf(err, "intake: spool %s", name)
	}
	return f.Name(), nil
}

func logResult(res *model.ImportResult) {
	zap.L().Info("intake: parsed file",
		zap.String("file", res.Session.SourceName),
		zap.String("session_id", res.Session.ID),
		zap.Int("vendors", res.Session.VendorsExtracted),
		zap.Float64("overall_confidence", res.Session.OverallConfidence),
		zap.Int("low_confidence", res.Session.LowConfidenceCount),
		zap.Int("warnings", len(res.Session.Warnings)),
	)
}
