// Package parsers extracts text from uploaded files through ordered
// parse strategies. Parsing never fails outright: when every strategy
// errors or produces garbled output, the outcome is a fallback
// placeholder describing the failure.
package parsers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
	"github.com/hanmaru-labs/hanrag/internal/textnorm"
)

// DefaultMaxFileSize is the largest file accepted for parsing.
const DefaultMaxFileSize = 100 << 20

// DefaultMinContentRunes is the minimum cleaned text length a strategy
// must exceed to count as a success.
const DefaultMinContentRunes = 20

// Failure reasons surfaced in fallback outcomes.
const (
	reasonNotFound    = "파일을 찾을 수 없습니다"
	reasonNotReadable = "파일 읽기 권한이 없습니다"
	reasonEmptyFile   = "빈 파일입니다"
	reasonTooLarge    = "파일이 너무 큽니다"
	reasonGarbled     = "가독 불가능한 텍스트 추출"
	reasonNoContent   = "유효한 내용 추출 실패"
)

// DefaultStrategies returns the built-in strategy set: three PDF
// strategies in decreasing fidelity order, the Word document strategy,
// and plain text decoding that doubles as the unknown-extension
// catch-all.
func DefaultStrategies() []driven.ParseStrategy {
	return []driven.ParseStrategy{
		NewPDFRows(),
		NewPDFContent(),
		NewPDFPlain(),
		NewDocx(),
		NewText(),
		NewTextCatchAll(),
	}
}

// Registry routes files to parse strategies by extension and validates
// their output. It implements the FileParser interface.
type Registry struct {
	byExt            map[string][]driven.ParseStrategy
	catchAll         []driven.ParseStrategy
	maxFileSize      int64
	minContentRunes  int
	garbledThreshold float64
	log              *zap.Logger
}

var _ driven.FileParser = (*Registry)(nil)

// Option configures the registry.
type Option func(*Registry)

// WithMaxFileSize sets the file size cap in bytes.
func WithMaxFileSize(n int64) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxFileSize = n
		}
	}
}

// WithMinContentRunes sets the minimum cleaned text length.
func WithMinContentRunes(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.minContentRunes = n
		}
	}
}

// WithGarbledThreshold sets the recognisable-character fraction below
// which strategy output is rejected.
func WithGarbledThreshold(t float64) Option {
	return func(r *Registry) {
		if t > 0 && t <= 1 {
			r.garbledThreshold = t
		}
	}
}

// NewRegistry creates a registry with the given strategies. Strategies
// for the same extension are tried in descending priority order; a
// strategy with no extensions becomes a catch-all for unknown types.
func NewRegistry(log *zap.Logger, strategies []driven.ParseStrategy, opts ...Option) *Registry {
	if log == nil {
		log = zap.NewNop()
	}

	r := &Registry{
		byExt:            make(map[string][]driven.ParseStrategy),
		maxFileSize:      DefaultMaxFileSize,
		minContentRunes:  DefaultMinContentRunes,
		garbledThreshold: textnorm.DefaultGarbledThreshold,
		log:              log,
	}

	for _, opt := range opts {
		opt(r)
	}

	for _, s := range strategies {
		r.Register(s)
	}

	return r
}

// Register adds a strategy, keeping per-extension lists sorted by
// descending priority.
func (r *Registry) Register(s driven.ParseStrategy) {
	exts := s.Extensions()
	if len(exts) == 0 {
		r.catchAll = append(r.catchAll, s)
		sort.SliceStable(r.catchAll, func(i, j int) bool {
			return r.catchAll[i].Priority() > r.catchAll[j].Priority()
		})
		return
	}

	for _, ext := range exts {
		ext = strings.ToLower(ext)
		r.byExt[ext] = append(r.byExt[ext], s)
		sort.SliceStable(r.byExt[ext], func(i, j int) bool {
			return r.byExt[ext][i].Priority() > r.byExt[ext][j].Priority()
		})
	}
}

// Supported returns the sorted extensions with a registered strategy.
func (r *Registry) Supported() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Parse runs the strategy chain for the file. The returned error is
// non-nil only when ctx is cancelled; every other failure produces a
// fallback outcome instead.
func (r *Registry) Parse(ctx context.Context, path string) (driven.ParseOutcome, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	if reason, ok := r.checkFile(path); !ok {
		r.log.Warn("file rejected before parsing",
			zap.String("file", filepath.Base(path)),
			zap.String("reason", reason))
		return r.fallback(path, ext, reason), nil
	}

	strategies := r.byExt[ext]
	if len(strategies) == 0 {
		r.log.Info("no strategy for extension, trying catch-all",
			zap.String("file", filepath.Base(path)),
			zap.String("ext", ext))
		strategies = r.catchAll
	}
	if len(strategies) == 0 {
		return r.fallback(path, ext, fmt.Sprintf("알 수 없는 파일 형식 (.%s)", ext)), nil
	}

	var failures []string
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return driven.ParseOutcome{}, err
		}

		raw, err := runStrategy(ctx, s, path)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", s.Name(), err))
			r.log.Warn("parse strategy failed",
				zap.String("strategy", s.Name()),
				zap.String("file", filepath.Base(path)),
				zap.Error(err))
			continue
		}

		cleaned := textnorm.Clean(raw)
		if utf8.RuneCountInString(cleaned) <= r.minContentRunes {
			failures = append(failures, fmt.Sprintf("%s: %s", s.Name(), reasonNoContent))
			continue
		}
		if textnorm.IsGarbledAt(cleaned, r.garbledThreshold) {
			failures = append(failures, fmt.Sprintf("%s: %s", s.Name(), reasonGarbled))
			continue
		}

		r.log.Info("parse strategy succeeded",
			zap.String("strategy", s.Name()),
			zap.String("file", filepath.Base(path)),
			zap.Int("chars", utf8.RuneCountInString(cleaned)))
		return driven.ParseOutcome{
			Text:     cleaned,
			FileType: ext,
			Strategy: s.Name(),
		}, nil
	}

	reason := strings.Join(failures, "; ")
	r.log.Error("all parse strategies failed",
		zap.String("file", filepath.Base(path)),
		zap.String("failures", reason))
	return r.fallback(path, ext, reason), nil
}

// checkFile validates existence, readability, and size before any
// strategy runs. It returns a failure reason when the file is unusable.
func (r *Registry) checkFile(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return reasonNotFound, false
		}
		return fmt.Sprintf("파일 정보를 읽을 수 없습니다: %v", err), false
	}

	f, err := os.Open(path)
	if err != nil {
		return reasonNotReadable, false
	}
	f.Close()

	if info.Size() == 0 {
		return reasonEmptyFile, false
	}
	if info.Size() > r.maxFileSize {
		return fmt.Sprintf("%s (%.1fMB)", reasonTooLarge, float64(info.Size())/(1<<20)), false
	}

	return "", true
}

func (r *Registry) fallback(path, ext, reason string) driven.ParseOutcome {
	return driven.ParseOutcome{
		Text:          fallbackMessage(filepath.Base(path), fileSize(path), reason),
		FileType:      ext,
		Fallback:      true,
		FailureReason: reason,
	}
}

// runStrategy shields the chain from panics inside PDF parsing; the
// pdf library panics on some malformed files.
func runStrategy(ctx context.Context, s driven.ParseStrategy, path string) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return s.Parse(ctx, path)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
